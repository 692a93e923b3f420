package service

import (
	"context"
	"fmt"
	"stibap_portal/internal/model"
	"stibap_portal/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCourseInteractionEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	for i := 8; i >= 1; i-- {
		require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: fmt.Sprintf("old%d", i)}))
	}
	list := store.CourseInteractions(ctx)
	require.Len(t, list, 8)
	assert.Equal(t, "old1", list[0].ID)
	assert.Equal(t, "old8", list[7].ID)

	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: "c1"}))
	list = store.CourseInteractions(ctx)
	require.Len(t, list, 8)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "old7", list[7].ID)
}

func TestRecordCourseInteractionDuplicateMovesToFront(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: id}))
	}
	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: "a"}))

	list := store.CourseInteractions(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{}))
	assert.Len(t, store.CourseInteractions(ctx), 3)
}

func TestUpdateQuizRecommendationsMergesAndCaps(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.UpdateQuizRecommendations(ctx, courses("a", "b", "a", "")))
	list := store.QuizRecommendations(ctx)
	require.Len(t, list, 2)

	require.NoError(t, store.UpdateQuizRecommendations(ctx, courses("c", "d", "e", "f", "g", "h", "b")))
	list = store.QuizRecommendations(ctx)
	require.Len(t, list, util.RecommendationListCap)
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c", "d", "e", "f", "g", "h", "b", "a"}, ids)
}

func TestUpdateQuizRecommendationsIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore()

	events := 0
	store.Subscribe(func(StoreEvent) { events++ })

	require.NoError(t, store.UpdateQuizRecommendations(ctx, courses("", "")))
	assert.Equal(t, 0, events)
	_, ok, err := repo.Get(ctx, util.KeyQuizRecommendations)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreQuizResultCapsHistory(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 25; i++ {
		_, err := store.StoreQuizResult(ctx, model.QuizResult{Score: i % 5, Total: 5, Grade20: float64(i % 5 * 4)}, "Math")
		require.NoError(t, err)
	}
	history := store.QuizHistory(ctx)
	require.Len(t, history, util.QuizHistoryCap)
	assert.Greater(t, history[0].Timestamp, history[1].Timestamp)

	latest, ok := store.LatestQuiz(ctx)
	require.True(t, ok)
	assert.Equal(t, "Math", latest.Subject)
}

func TestStoreQuizAttemptReplacesSameTimestamp(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.StoreQuizAttempt(ctx, model.QuizAttempt{Grade20: floatPtr(10), Timestamp: 42}))
	require.NoError(t, store.StoreQuizAttempt(ctx, model.QuizAttempt{Grade20: floatPtr(12), Timestamp: 42}))

	history := store.QuizHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, 12.0, *history[0].Grade20)
	assert.Equal(t, util.DefaultQuizSubject, history[0].Subject)
}

func TestCorruptListsReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore()

	require.NoError(t, repo.Set(ctx, util.KeyQuizHistory, "{not json"))
	require.NoError(t, repo.Set(ctx, util.KeyCourseInteractions, `{"id":"c1"}`))

	assert.Empty(t, store.QuizHistory(ctx))
	assert.Empty(t, store.CourseInteractions(ctx))

	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: "c1"}))
	assert.Len(t, store.CourseInteractions(ctx), 1)
}

func TestSubscribeDeliversAndUnsubscribeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	var topics []StoreTopic
	unsubscribe := store.Subscribe(func(ev StoreEvent) { topics = append(topics, ev.Topic) })

	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: "c1"}))
	require.NoError(t, store.UpdateQuizRecommendations(ctx, courses("c2")))
	_, err := store.StoreQuizResult(ctx, model.QuizResult{Score: 1, Total: 2, Grade20: 10}, "")
	require.NoError(t, err)

	assert.Equal(t, []StoreTopic{TopicCourseInteractions, TopicQuizRecommendations, TopicQuizHistory}, topics)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, store.Notifier.Subscribers())

	require.NoError(t, store.RecordCourseInteraction(ctx, model.Course{ID: "c3"}))
	assert.Len(t, topics, 3)
}
