// cmd/audit is an asynchronous consumer that pops friend events from the
// Redis queue and persists them to a PostgreSQL audit table.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/opencircle/socialgraph/internal/database"
	"github.com/opencircle/socialgraph/internal/models"
)

// auditService drains the friend-event queue into the friend_events table in
// small batches.
type auditService struct {
	rdb        *redis.Client
	queue      string
	batchSize  int
	flushDelay time.Duration

	batchMu sync.Mutex
	batch   []models.FriendEvent

	ctx      context.Context
	cancelFn context.CancelFunc
}

func newAuditService() *auditService {
	ctx, cancel := context.WithCancel(context.Background())
	return &auditService{
		rdb: redis.NewClient(&redis.Options{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		}),
		queue:      getEnv("AUDIT_QUEUE_NAME", "socialgraph_friend_events"),
		batchSize:  getEnvInt("AUDIT_BATCH_SIZE", 20),
		flushDelay: time.Duration(getEnvInt("AUDIT_FLUSH_MS", 500)) * time.Millisecond,
		ctx:        ctx,
		cancelFn:   cancel,
	}
}

// run blocks, popping events until the context is canceled. A flush ticker
// bounds how long a partial batch can sit in memory.
func (s *auditService) run() {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.flush()
			}
		}
	}()

	for {
		res, err := s.rdb.BLPop(s.ctx, 2*time.Second, s.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			log.Printf("blpop error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		// res[0] is the queue name, res[1] the payload
		var ev models.FriendEvent
		if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
			log.Printf("skipping malformed event: %v", err)
			continue
		}

		s.batchMu.Lock()
		s.batch = append(s.batch, ev)
		full := len(s.batch) >= s.batchSize
		s.batchMu.Unlock()

		if full {
			s.flush()
		}
	}
}

func (s *auditService) flush() {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = nil
	s.batchMu.Unlock()

	q := `
		INSERT INTO friend_events (kind, actor_id, subject_id, occurred_at)
		VALUES ($1, $2, $3, $4)
	`
	err := pgx.BeginTxFunc(context.Background(), database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, ev := range pending {
			occurred := time.UnixMilli(ev.Timestamp)
			if _, err := tx.Exec(context.Background(), q, string(ev.Kind), ev.ActorID, ev.SubjectID, occurred); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("failed to persist %d friend events: %v", len(pending), err)
		return
	}
	log.Printf("persisted %d friend events", len(pending))
}

func main() {
	database.ConnectDB()
	defer database.DB.Close()

	svc := newAuditService()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		log.Printf("terminating, flushing remaining events")
		svc.cancelFn()
	}()

	svc.run()
	svc.flush()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
