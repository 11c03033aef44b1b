package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
)

// ResponsePersistWorker consumes queued generator responses and writes
// them onto their chat session rows.
type ResponsePersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.ChatSessionRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewResponsePersistWorker(conn *amqp.Connection, repo *repository.ChatSessionRepository, queueName string) *ResponsePersistWorker {
	return &ResponsePersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *ResponsePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var update model.ResponseUpdate
				if err := json.Unmarshal(d.Body, &update); err != nil {
					log.Printf("worker decode response update failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.UpdateRawResponse(update.SessionID, update.RawResponse); err != nil {
					log.Printf("worker persist response failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ResponsePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
