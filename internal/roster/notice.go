package roster

// NoticeKind distinguishes user-facing outcomes.
type NoticeKind int

const (
	Success NoticeKind = iota
	Failure
)

func (k NoticeKind) String() string {
	if k == Failure {
		return "failure"
	}
	return "success"
}

// Notice is a user-visible outcome of a submit.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// ChanNotifier forwards notices on a buffered channel. Notify never blocks;
// if the buffer is full the notice is dropped.
type ChanNotifier struct {
	C chan Notice
}

// NewChanNotifier returns a ChanNotifier with the given buffer size.
func NewChanNotifier(size int) *ChanNotifier {
	if size <= 0 {
		size = 1
	}
	return &ChanNotifier{C: make(chan Notice, size)}
}

func (n *ChanNotifier) Notify(notice Notice) {
	select {
	case n.C <- notice:
	default:
	}
}
