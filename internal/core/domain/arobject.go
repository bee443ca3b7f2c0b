package domain

// ARObject is the overlay content shown when a target is recognised.
type ARObject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Story string `json:"story"`
}

var arObjects = []ARObject{
	{
		ID:    "personne",
		Name:  "Portrait",
		Icon:  "👤",
		Story: "A portrait captured in a quiet moment, the light sculpting its contours and leaving the viewer to imagine the story behind the gaze.",
	},
	{
		ID:    "montre",
		Name:  "Montre",
		Icon:  "⌚",
		Story: "A watch handed down through generations, its hands still marking the moments that matter.",
	},
	{
		ID:    "télé",
		Name:  "Télévision",
		Icon:  "📺",
		Story: "A television that has gathered a household for news, films and shared evenings.",
	},
	{
		ID:    "logosrouge",
		Name:  "Logo Rouge",
		Icon:  "🔴",
		Story: "A red logo built to be remembered: energy and intent in a single mark.",
	},
}

// AllARObjects returns the overlay objects in declaration order.
func AllARObjects() []ARObject {
	out := make([]ARObject, len(arObjects))
	copy(out, arObjects)
	return out
}

// LookupARObject finds an overlay object by id.
func LookupARObject(id string) (ARObject, bool) {
	for _, o := range arObjects {
		if o.ID == id {
			return o, true
		}
	}
	return ARObject{}, false
}
