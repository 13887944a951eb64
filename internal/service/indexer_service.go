package service

import (
	"context"
	"encoding/json"

	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/repository/specification"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIndexerService consumes chunk-indexing events and fills in the embedding
// column. Chunks stay searchable-invisible (NULL embedding) until processed.
type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	log               logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		log:               log,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexChunksMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.log.Error("indexer_service", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack invalid messages to prevent infinite retry.
		msg.Ack()
		return
	}

	is.log.Info("indexer_service", "indexing document chunks", map[string]interface{}{
		"filename":    payload.Filename,
		"chunk_count": len(payload.ChunkIds),
	})

	uow := is.uowFactory.NewUnitOfWork(ctx)

	indexed := 0
	for _, chunkId := range payload.ChunkIds {
		chunk, err := uow.DocumentChunkRepository().FindOne(ctx, specification.ByID{ID: chunkId})
		if err != nil {
			is.log.Error("indexer_service", "failed to load chunk", map[string]interface{}{
				"chunk_id": chunkId,
				"error":    err.Error(),
			})
			msg.Nack()
			return
		}
		if chunk == nil {
			// Document replaced or deleted while the event sat in the queue.
			continue
		}

		res, err := is.embeddingProvider.Generate(chunk.Content)
		if err != nil {
			is.log.Error("indexer_service", "embedding generation failed", map[string]interface{}{
				"chunk_id": chunkId,
				"filename": payload.Filename,
				"error":    err.Error(),
			})
			msg.Nack()
			return
		}

		if err := uow.DocumentChunkRepository().UpdateEmbedding(ctx, chunkId, res.Values); err != nil {
			is.log.Error("indexer_service", "failed to store embedding", map[string]interface{}{
				"chunk_id": chunkId,
				"error":    err.Error(),
			})
			msg.Nack()
			return
		}
		indexed++
	}

	is.log.Info("indexer_service", "document indexed", map[string]interface{}{
		"filename": payload.Filename,
		"indexed":  indexed,
	})
	msg.Ack()
}
