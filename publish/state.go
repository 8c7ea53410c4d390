package publish

type State int32

const (
	Drafting State = iota
	Submitting
	PublishedRemote
	PublishedLocalFallback
	Done
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Submitting:
		return "submitting"
	case PublishedRemote:
		return "published_remote"
	case PublishedLocalFallback:
		return "published_local_fallback"
	case Done:
		return "done"
	}
	return "unknown"
}
