package character

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSurvivor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "alive human from earth c137",
			record: Record{Name: "Rick Sanchez", Species: "Human", Status: "Alive", Origin: "Earth (C-137)"},
			want:   true,
		},
		{
			name:   "alive human from replacement dimension",
			record: Record{Name: "Beth Smith", Species: "Human", Status: "Alive", Origin: "Earth (Replacement Dimension)"},
			want:   true,
		},
		{
			name:   "dead human from earth",
			record: Record{Species: "Human", Status: "Dead", Origin: "Earth (C-137)"},
			want:   false,
		},
		{
			name:   "alive alien from earth",
			record: Record{Species: "Alien", Status: "Alive", Origin: "Earth (C-137)"},
			want:   false,
		},
		{
			name:   "unknown origin",
			record: Record{Species: "Human", Status: "Alive", Origin: "unknown"},
			want:   false,
		},
		{
			name:   "empty origin",
			record: Record{Species: "Human", Status: "Alive", Origin: ""},
			want:   false,
		},
		{
			name:   "lowercase earth does not match",
			record: Record{Species: "Human", Status: "Alive", Origin: "earth (C-137)"},
			want:   false,
		},
		{
			name:   "lowercase species does not match",
			record: Record{Species: "human", Status: "Alive", Origin: "Earth (C-137)"},
			want:   false,
		},
		{
			name:   "status unknown",
			record: Record{Species: "Human", Status: "unknown", Origin: "Earth (C-137)"},
			want:   false,
		},
		{
			name:   "origin mars",
			record: Record{Species: "Human", Status: "Alive", Origin: "Mars"},
			want:   false,
		},
		{
			name:   "origin containing earth mid-string",
			record: Record{Species: "Human", Status: "Alive", Origin: "Post-Apocalyptic Earth"},
			want:   true,
		},
		{
			name:   "empty record",
			record: Record{},
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Survivor(tt.record))
		})
	}
}

func TestFilterSurvivors_PreservesOrder(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "Rick Sanchez", Species: "Human", Status: "Alive", Origin: "Earth (C-137)"},
		{ID: 2, Name: "Birdperson", Species: "Bird-Person", Status: "Alive", Origin: "Bird World"},
		{ID: 3, Name: "Morty Smith", Species: "Human", Status: "Alive", Origin: "Earth (Evil Rick's Target Dimension)"},
		{ID: 4, Name: "Adjudicator Rick", Species: "Human", Status: "Dead", Origin: "unknown"},
		{ID: 5, Name: "Beth Smith", Species: "Human", Status: "Alive", Origin: "Earth (Replacement Dimension)"},
	}

	kept := FilterSurvivors(records)

	require.Len(t, kept, 3)
	require.Equal(t, []int{1, 3, 5}, []int{kept[0].ID, kept[1].ID, kept[2].ID})
}

func TestFilterSurvivors_EmptyInput(t *testing.T) {
	t.Parallel()

	kept := FilterSurvivors(nil)
	require.NotNil(t, kept)
	require.Empty(t, kept)
}

func TestReduce(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
			Origin: "Earth (C-137)", Location: "Citadel of Ricks",
			Image: "https://rickandmortyapi.com/api/character/avatar/1.jpeg", Episodes: 51},
	}

	chars := Reduce(records)

	require.Len(t, chars, 1)
	require.Equal(t, Character{
		Name:     "Rick Sanchez",
		Location: "Citadel of Ricks",
		Image:    "https://rickandmortyapi.com/api/character/avatar/1.jpeg",
	}, chars[0])
}

func TestReduce_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	require.NotNil(t, Reduce(nil))
}
