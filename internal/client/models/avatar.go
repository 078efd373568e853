package models

// AvatarRef is a stored reference from which a picture URL can be derived:
// an absolute URL, a server-relative path, a raw identity id, or empty.
type AvatarRef string

// AvatarKind discriminates the forms an AvatarRef can take.
type AvatarKind int

const (
	AvatarNone AvatarKind = iota
	AvatarAbsoluteURL
	AvatarServerPath
	AvatarIDToken
	AvatarSuffixPath
)

func (k AvatarKind) String() string {
	switch k {
	case AvatarAbsoluteURL:
		return "absolute-url"
	case AvatarServerPath:
		return "server-path"
	case AvatarIDToken:
		return "id-token"
	case AvatarSuffixPath:
		return "suffix-path"
	default:
		return "none"
	}
}

// File is a user-selected file about to be uploaded.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// NewFile builds a File whose Size is len(data).
func NewFile(name, contentType string, data []byte) File {
	return File{Name: name, ContentType: contentType, Size: int64(len(data)), Data: data}
}
