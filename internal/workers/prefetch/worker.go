package prefetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
	"github.com/Dhiren507/skillsync/internal/infrastructure/queue"
	"github.com/Dhiren507/skillsync/internal/transcript"
)

// Worker drains the transcript prefetch queue: for every imported video it
// fetches the caption track and persists it, so the first generation request
// on that video skips the live fetch.
type Worker struct {
	queue       *queue.RedisQueue
	streaming   *queue.StreamingRedisQueue
	transcripts transcript.Source
	videoRepo   repositories.VideoRepository
	workerCount int
	log         *logrus.Logger
}

func NewWorker(q *queue.RedisQueue, sq *queue.StreamingRedisQueue, src transcript.Source, videoRepo repositories.VideoRepository, workerCount int, log *logrus.Logger) *Worker {
	if workerCount <= 0 {
		workerCount = 4
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{
		queue:       q,
		streaming:   sq,
		transcripts: src,
		videoRepo:   videoRepo,
		workerCount: workerCount,
		log:         log,
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.workerLoop(ctx, workerID)
		}(i + 1)
	}

	<-ctx.Done()
	w.log.Info("shutting down prefetch workers")
	wg.Wait()
	w.log.Info("all prefetch workers stopped")
}

func (w *Worker) workerLoop(ctx context.Context, workerID int) {
	log := w.log.WithField("worker", workerID)
	log.Info("prefetch worker ready")
	for {
		select {
		case <-ctx.Done():
			log.Info("prefetch worker shutting down")
			return
		default:
			job, err := w.queue.DequeuePrefetch(ctx)
			if err != nil {
				// BRPop returns redis.Nil on timeout; anything else is real.
				if !strings.Contains(err.Error(), "redis: nil") && ctx.Err() == nil {
					log.WithError(err).Error("queue error")
				}
				time.Sleep(500 * time.Millisecond)
				continue
			}

			if job != nil {
				start := time.Now()
				w.processJob(ctx, job)
				log.WithFields(logrus.Fields{
					"video_id": job.VideoID,
					"took":     time.Since(start),
				}).Info("prefetch job done")
			}
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.TranscriptPrefetchJob) {
	log := w.log.WithFields(logrus.Fields{
		"video_id":   job.VideoID,
		"youtube_id": job.YouTubeID,
	})

	fetched := w.transcripts.Fetch(ctx, job.YouTubeID)
	fetched.VideoID = job.VideoID

	if err := w.videoRepo.SaveTranscript(ctx, job.VideoID, fetched); err != nil {
		log.WithError(err).Error("failed to persist transcript")
		return
	}

	if !fetched.Available {
		log.WithField("reason", fetched.Error).Info("no transcript available")
		return
	}

	if w.streaming != nil {
		w.streaming.Publish(ctx, &models.StreamMessage{
			VideoID:   job.VideoID,
			EventType: models.EventTranscriptReady,
		})
	}
}
