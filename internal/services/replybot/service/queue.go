package service

import (
	"sync"

	"shamewizard/internal/services/replybot/domain"
)

// Queue is the FIFO of pending replies. The head stays put until removed
type Queue struct {
	mu   sync.Mutex
	jobs []domain.ReplyJob
	wake chan struct{}
}

// NewQueue returns an empty queue
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Push appends job and wakes a waiting consumer
func (q *Queue) Push(job domain.ReplyJob) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Peek returns the head without removing it
func (q *Queue) Peek() (domain.ReplyJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return domain.ReplyJob{}, false
	}
	return q.jobs[0], true
}

// Remove drops the job with id, wherever it sits
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, j := range q.jobs {
		if j.ID == id {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return true
		}
	}
	return false
}

// Bump increments the attempt counter of job id
func (q *Queue) Bump(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.jobs {
		if q.jobs[i].ID == id {
			q.jobs[i].Attempts++
			return
		}
	}
}

// Len returns the queue depth
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Snapshot copies the pending jobs in order
func (q *Queue) Snapshot() []domain.ReplyJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.ReplyJob(nil), q.jobs...)
}

// Wait returns a channel that receives after a Push. Signals coalesce,
// so callers re-check Peek after waking
func (q *Queue) Wait() <-chan struct{} { return q.wake }
