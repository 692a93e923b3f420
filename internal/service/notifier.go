package service

import (
	"sort"
	"stibap_portal/pkg/monitoring"
	"sync"
	"time"
)

type StoreTopic string

const (
	TopicQuizHistory         StoreTopic = "quiz_history"
	TopicQuizRecommendations StoreTopic = "quiz_recommendations"
	TopicCourseInteractions  StoreTopic = "course_interactions"
)

type StoreEvent struct {
	Topic StoreTopic `json:"topic"`
	At    time.Time  `json:"at"`
}

// Notifier 本地列表变更的显式订阅点，按订阅顺序同步投递
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(StoreEvent)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(StoreEvent))}
}

// Subscribe 返回的取消函数可重复调用
func (n *Notifier) Subscribe(fn func(StoreEvent)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

func (n *Notifier) Publish(topic StoreTopic) {
	monitoring.StoreEventCounter.WithLabelValues(string(topic)).Inc()

	n.mu.RLock()
	ids := make([]int, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(StoreEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, n.subs[id])
	}
	n.mu.RUnlock()

	ev := StoreEvent{Topic: topic, At: time.Now()}
	for _, fn := range fns {
		fn(ev)
	}
}

func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
