package constants

// DefaultPasswords is the ordered candidate list tried when a document refuses to open.
// The empty password comes first so owner-only protection is lifted before guessing.
var DefaultPasswords = []string{
	"",
	"33042",
	"56993",
	"60869",
	"08902",
	"3304",
	"5699",
	"6086",
	"0890",
}

// Passwords returns a copy of DefaultPasswords so callers cannot reorder the shared list.
func Passwords() []string {
	out := make([]string, len(DefaultPasswords))
	copy(out, DefaultPasswords)
	return out
}
