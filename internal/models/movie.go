package models

// Movie is a casting-agency movie. Title is the natural key used during
// reconciliation.
type Movie struct {
	ID          int64
	Title       string
	ReleaseDate Date
	Actors      []*Actor
}

func NewMovie(title string, releaseDate Date) *Movie {
	return &Movie{
		Title:       title,
		ReleaseDate: releaseDate,
	}
}

// ActorNames returns the set of names currently linked to the movie.
func (m *Movie) ActorNames() map[string]bool {
	names := make(map[string]bool, len(m.Actors))
	for _, a := range m.Actors {
		names[a.Name] = true
	}
	return names
}
