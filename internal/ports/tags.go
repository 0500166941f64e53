package ports

import "context"

// TagSourcePort lists tags already present in the local repository.
type TagSourcePort interface {
	ListTags(ctx context.Context) ([]string, error)
}
