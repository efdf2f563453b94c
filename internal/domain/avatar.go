package domain

// Avatar pairs an image file with a highlight color so clients can
// render a player consistently everywhere.
type Avatar struct {
	File  string `json:"file"`
	Color string `json:"color"`
}

// Avatars is the full catalog. A room holds at most MaxPlayers players,
// so with six entries every active player can own a distinct avatar.
var Avatars = []Avatar{
	{File: "avatar1.png", Color: "#f39c12"},
	{File: "avatar2.png", Color: "#3498db"},
	{File: "avatar3.png", Color: "#e84393"},
	{File: "avatar4.png", Color: "#e74c3c"},
	{File: "avatar5.png", Color: "#f1c40f"},
	{File: "avatar6.png", Color: "#2ecc71"},
}

// AvatarByFile resolves a requested avatar file, falling back to the
// first catalog entry for unknown names.
func AvatarByFile(file string) Avatar {
	for _, a := range Avatars {
		if a.File == file {
			return a
		}
	}
	return Avatars[0]
}
