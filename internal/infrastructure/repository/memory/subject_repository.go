package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/talentkick/fixturesync/internal/domain/subject"
)

type SubjectRepository struct {
	mu    sync.RWMutex
	items map[string]subject.Subject
	order []string
}

func NewSubjectRepository(subjects []subject.Subject) *SubjectRepository {
	items := make(map[string]subject.Subject, len(subjects))
	order := make([]string, 0, len(subjects))
	for _, item := range subjects {
		items[item.ID] = item
		order = append(order, item.ID)
	}
	return &SubjectRepository{items: items, order: order}
}

func (r *SubjectRepository) ListWithProfileURL(_ context.Context) ([]subject.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]subject.Subject, 0, len(r.order))
	for _, id := range r.order {
		item := r.items[id]
		if strings.TrimSpace(item.ProfileURL) == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
