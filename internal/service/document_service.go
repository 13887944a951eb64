package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"spinach-be/internal/config"
	"spinach-be/internal/dto"
	"spinach-be/internal/entity"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/repository/specification"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/rag"
	"spinach-be/pkg/utils"

	"github.com/google/uuid"
)

// Extensions accepted by document upload. Anything else is rejected up front
// so binary content never reaches the splitter.
var allowedExtensions = map[string]string{
	".txt":  "text",
	".md":   "markdown",
	".json": "json",
}

type IDocumentService interface {
	UploadFile(ctx context.Context, filename string, content []byte) (*dto.DocumentUploadResponse, error)
	UploadText(ctx context.Context, request *dto.UploadTextRequest) (*dto.DocumentUploadResponse, error)
	List(ctx context.Context) ([]*dto.DocumentInfoResponse, error)
	Content(ctx context.Context, filename string) (*dto.DocumentContentResponse, error)
	Delete(ctx context.Context, filename string) (*dto.DocumentDeleteResponse, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (*dto.DocumentCountResponse, error)
	Search(ctx context.Context, request *dto.SearchRequest) ([]dto.SourceDTO, error)
	Templates(ctx context.Context) ([]*dto.TemplateResponse, error)
	Template(ctx context.Context, id string) (*dto.TemplateContentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	settingService   ISettingService
	retriever        *rag.Retriever
	templatesDir     string
	log              logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	settingService ISettingService,
	retriever *rag.Retriever,
	cfg *config.Config,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		settingService:   settingService,
		retriever:        retriever,
		templatesDir:     cfg.App.TemplatesDir,
		log:              log,
	}
}

func (ds *documentService) UploadFile(ctx context.Context, filename string, content []byte) (*dto.DocumentUploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fileType, ok := allowedExtensions[ext]
	if !ok {
		return nil, serverutils.NewBadRequestError("unsupported file type, allowed: .txt, .md, .json")
	}
	if !utf8.Valid(content) {
		return nil, serverutils.NewBadRequestError("file content is not valid UTF-8 text")
	}

	return ds.ingest(ctx, filepath.Base(filename), fileType, string(content))
}

func (ds *documentService) UploadText(ctx context.Context, request *dto.UploadTextRequest) (*dto.DocumentUploadResponse, error) {
	filename := filepath.Base(request.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	fileType, ok := allowedExtensions[ext]
	if !ok {
		// Pasted text gets a markdown extension when none was given.
		filename += ".md"
		fileType = "markdown"
	}

	return ds.ingest(ctx, filename, fileType, request.Text)
}

func (ds *documentService) ingest(ctx context.Context, filename, fileType, text string) (*dto.DocumentUploadResponse, error) {
	cleaned := utils.CleanText(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, serverutils.NewBadRequestError("document is empty")
	}

	params := ds.settingService.RagParams(ctx)
	pieces := utils.SplitText(cleaned, params.ChunkSize, params.ChunkOverlap)

	now := time.Now()
	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	chunkIds := make([]uuid.UUID, 0, len(pieces))
	for i, piece := range pieces {
		chunk := &entity.DocumentChunk{
			Id:         uuid.New(),
			Filename:   filename,
			FileType:   fileType,
			ChunkIndex: i,
			Content:    piece,
			CharCount:  utf8.RuneCountInString(piece),
			CreatedAt:  now,
		}
		chunks = append(chunks, chunk)
		chunkIds = append(chunkIds, chunk.Id)
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Re-uploading a file replaces its chunks.
	if _, err := uow.DocumentChunkRepository().DeleteByFilename(ctx, filename); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishIndexChunksMessage{
		Filename: filename,
		ChunkIds: chunkIds,
	})
	if err != nil {
		return nil, err
	}
	if err := ds.publisherService.Publish(ctx, payload); err != nil {
		ds.log.Error("document_service", "failed to publish indexing event", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		return nil, err
	}

	ds.log.Info("document_service", "document stored", map[string]interface{}{
		"filename":    filename,
		"chunk_count": len(chunks),
	})

	return &dto.DocumentUploadResponse{
		Filename:   filename,
		ChunkCount: len(chunks),
	}, nil
}

func (ds *documentService) List(ctx context.Context) ([]*dto.DocumentInfoResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*dto.DocumentInfoResponse)
	order := make([]string, 0)
	for _, chunk := range chunks {
		info, ok := grouped[chunk.Filename]
		if !ok {
			info = &dto.DocumentInfoResponse{
				Filename:   chunk.Filename,
				FileType:   chunk.FileType,
				UploadedAt: chunk.CreatedAt,
			}
			grouped[chunk.Filename] = info
			order = append(order, chunk.Filename)
		}
		info.ChunkCount++
		info.TotalChars += chunk.CharCount
	}

	response := make([]*dto.DocumentInfoResponse, 0, len(order))
	for _, name := range order {
		response = append(response, grouped[name])
	}
	return response, nil
}

func (ds *documentService) Content(ctx context.Context, filename string) (*dto.DocumentContentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByFilename{Filename: filename},
		specification.OrderBy{Field: "chunk_index", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, serverutils.NewNotFoundError("document not found")
	}

	response := &dto.DocumentContentResponse{
		Filename:    filename,
		TotalChunks: len(chunks),
		Chunks:      make([]dto.ChunkDTO, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		response.Chunks = append(response.Chunks, dto.ChunkDTO{
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			CharCount:  chunk.CharCount,
		})
	}
	return response, nil
}

func (ds *documentService) Delete(ctx context.Context, filename string) (*dto.DocumentDeleteResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	deleted, err := uow.DocumentChunkRepository().DeleteByFilename(ctx, filename)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, serverutils.NewNotFoundError("document not found")
	}

	return &dto.DocumentDeleteResponse{
		Filename:      filename,
		ChunksDeleted: deleted,
	}, nil
}

func (ds *documentService) Reset(ctx context.Context) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().DeleteAll(ctx)
}

func (ds *documentService) Count(ctx context.Context) (*dto.DocumentCountResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentCountResponse{TotalChunks: total}, nil
}

func (ds *documentService) Search(ctx context.Context, request *dto.SearchRequest) ([]dto.SourceDTO, error) {
	params := ds.settingService.RagParams(ctx)
	topK := request.TopK
	if topK == 0 {
		topK = params.TopK
	}
	threshold := request.Threshold
	if threshold == 0 {
		threshold = params.SimilarityThreshold
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	scored, err := ds.retriever.Retrieve(ctx, uow.DocumentChunkRepository(), request.Query, topK, threshold)
	if err != nil {
		return nil, serverutils.NewBadGatewayError("search failed: " + err.Error())
	}

	return sourcesToDTO(scored), nil
}

func (ds *documentService) Templates(ctx context.Context) ([]*dto.TemplateResponse, error) {
	entries, err := os.ReadDir(ds.templatesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*dto.TemplateResponse{}, nil
		}
		return nil, err
	}

	templates := make([]*dto.TemplateResponse, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		templates = append(templates, &dto.TemplateResponse{
			Id:       id,
			Name:     ds.templateTitle(entry.Name(), id),
			Filename: entry.Name(),
		})
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Id < templates[j].Id
	})
	return templates, nil
}

func (ds *documentService) Template(ctx context.Context, id string) (*dto.TemplateContentResponse, error) {
	// The id is a bare name; reject anything that tries to leave the directory.
	if id != filepath.Base(id) || strings.Contains(id, "..") {
		return nil, serverutils.NewBadRequestError("invalid template id")
	}

	filename := id + ".md"
	content, err := os.ReadFile(filepath.Join(ds.templatesDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serverutils.NewNotFoundError("template not found")
		}
		return nil, err
	}

	return &dto.TemplateContentResponse{
		Id:       id,
		Content:  string(content),
		Filename: filename,
	}, nil
}

// templateTitle takes the first markdown heading as the display name and
// falls back to the id.
func (ds *documentService) templateTitle(filename, fallback string) string {
	content, err := os.ReadFile(filepath.Join(ds.templatesDir, filename))
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			break
		}
	}
	return fallback
}
