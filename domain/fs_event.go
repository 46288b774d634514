package domain

type FsEventKind string

const (
	Created FsEventKind = "created"
	Moved   FsEventKind = "moved"
)

// FsEvent is a single notification coming from the watched directory.
type FsEvent struct {
	Kind     FsEventKind
	Path     string
	DestPath string
	IsDir    bool
}

// Target is the path a readiness check must be performed on.
func (e FsEvent) Target() string {
	if e.Kind == Moved {
		return e.DestPath
	}
	return e.Path
}
