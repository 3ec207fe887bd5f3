package models

// Actor is a casting-agency actor. Name is the natural key used during
// reconciliation; ID is assigned by the store on insert and immutable after.
type Actor struct {
	ID     int64
	Name   string
	Age    int
	Gender string
	Movies []*Movie
}

func NewActor(name string, age int, gender string) *Actor {
	return &Actor{
		Name:   name,
		Age:    age,
		Gender: gender,
	}
}

// MovieTitles returns the set of titles currently linked to the actor.
func (a *Actor) MovieTitles() map[string]bool {
	titles := make(map[string]bool, len(a.Movies))
	for _, m := range a.Movies {
		titles[m.Title] = true
	}
	return titles
}
