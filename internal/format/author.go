package format

// GhostUser is shown when an item's author account no longer exists.
const GhostUser = "ghost"

// DisplayAuthor returns the login to show for an author, substituting
// GhostUser for an empty login.
func DisplayAuthor(login string) string {
	if login == "" {
		return GhostUser
	}
	return login
}

// TruncateUsername truncates a username to fit within maxWidth.
// If truncation is needed, an ellipsis is added.
func TruncateUsername(username string, maxWidth int) string {
	if len(username) <= maxWidth {
		return username
	}
	if maxWidth <= 1 {
		return username[:maxWidth]
	}
	return username[:maxWidth-1] + "…" // ellipsis character
}
