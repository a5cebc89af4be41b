package usecase

import "sync"

// imageOwners arbitrates data files of one folder that map to the same image
// name. The file listed first keeps the image whatever order the workers
// reach the files in; renders of one name never overlap.
type imageOwners struct {
	mu     sync.Mutex
	owners map[string]*imageOwner
}

type imageOwner struct {
	render sync.Mutex
	index  int
	file   string
}

func newImageOwners() *imageOwners {
	return &imageOwners{owners: make(map[string]*imageOwner)}
}

// claim tries to take name for the file at task index. On success the caller
// holds the render lock until it calls release. Otherwise the current owner is
// returned.
func (o *imageOwners) claim(name string, index int, file string) (release func(), owner string, ok bool) {
	o.mu.Lock()
	cur := o.owners[name]
	switch {
	case cur == nil:
		cur = &imageOwner{index: index, file: file}
		o.owners[name] = cur
	case cur.index < index:
		o.mu.Unlock()
		return nil, cur.file, false
	default:
		cur.index, cur.file = index, file
	}
	o.mu.Unlock()

	cur.render.Lock()
	return cur.render.Unlock, "", true
}

// owner returns the file that finally holds name.
func (o *imageOwners) owner(name string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cur := o.owners[name]; cur != nil {
		return cur.file
	}
	return ""
}
