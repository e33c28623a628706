package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/models"
	"github.com/developia-II/tree-rater-backend/internal/services"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/developia-II/tree-rater-backend/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadField is the multipart field carrying the photo.
const UploadField = "image"

type submission struct {
	Filename    string
	ContentType string `validate:"required,startswith=image/"`
	Size        int64  `validate:"gt=0"`
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/heic": "heic",
	"image/avif": "avif",
}

// blobName returns a collision-free name: tree-<uuid>.<ext>.
func blobName(contentType string) string {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		ext = "jpg"
	}
	return fmt.Sprintf("tree-%s.%s", uuid.NewString(), ext)
}

// Upload runs the rating pipeline: store the image, ask the critic, parse the
// reply, persist the record. A failure at any step ends the request; a blob
// stored before a record failure is kept.
func (h *Handler) Upload(c *fiber.Ctx) error {
	started := time.Now()
	ctx := c.UserContext()

	fh, err := c.FormFile(UploadField)
	if err != nil {
		h.metrics.ObserveUpload(metrics.ResultInvalid, started)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No image file provided")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	h.log.Info(ctx, "upload received",
		logger.String("filename", fh.Filename),
		logger.String("content_type", contentType),
		logger.Int64("size", fh.Size))

	if fh.Size > h.maxUploadBytes {
		h.metrics.ObserveUpload(metrics.ResultTooLarge, started)
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, tooLargeMessage(h.MaxUploadMB()))
	}

	data, err := readUpload(fh, h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			h.metrics.ObserveUpload(metrics.ResultTooLarge, started)
			return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, tooLargeMessage(h.MaxUploadMB()))
		}
		h.metrics.ObserveUpload(metrics.ResultInvalid, started)
		return fmt.Errorf("read upload: %w", err)
	}

	contentType = resolveContentType(contentType, data)
	sub := submission{Filename: fh.Filename, ContentType: contentType, Size: int64(len(data))}
	if err := utils.Validate.Struct(sub); err != nil {
		h.metrics.ObserveUpload(metrics.ResultInvalid, started)
		if sub.Size == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "No image file provided")
		}
		h.log.Info(ctx, "upload rejected", logger.String("content_type", contentType))
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only image uploads are allowed")
	}

	blobCtx, cancel := context.WithTimeout(ctx, h.blobTimeout)
	blobID, err := h.blobs.Save(blobCtx, blobName(contentType), contentType, data)
	cancel()
	if err != nil {
		h.metrics.ObserveUpload(metrics.ResultBlobError, started)
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	imageURL := h.blobs.PublicURL(blobID)
	h.log.Info(ctx, "image stored", logger.String("blob_id", blobID), logger.String("url", imageURL))

	rating, err := h.critique(ctx, services.ImageRef{URL: imageURL, MIMEType: contentType, Data: data})
	if err != nil {
		h.metrics.ObserveUpload(metrics.ResultAIUnavailable, started)
		return err
	}

	record := models.NewTreeRating(imageURL, rating)
	dbCtx, cancel := context.WithTimeout(ctx, h.dbTimeout)
	err = h.ratings.Insert(dbCtx, record)
	cancel()
	if err != nil {
		h.metrics.ObserveUpload(metrics.ResultDBError, started)
		h.log.Warn(ctx, "rating not saved, blob left in place", logger.String("blob_id", blobID))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	h.metrics.ObserveUpload(metrics.ResultSuccess, started)
	h.log.Info(ctx, "tree rated",
		logger.String("id", record.ID),
		logger.Float64("aesthetics", rating.Aesthetics.Score),
		logger.Float64("originality", rating.Originality.Score))

	return c.JSON(models.UploadResponse{
		Success:  true,
		ImageURL: imageURL,
		Rating:   rating,
	})
}

func (h *Handler) critique(ctx context.Context, img services.ImageRef) (models.Rating, error) {
	aiCtx, cancel := context.WithTimeout(ctx, h.aiTimeout)
	defer cancel()

	started := time.Now()
	raw, err := h.critic.Critique(aiCtx, img)
	h.metrics.ObserveInference(h.critic.Name(), time.Since(started))
	if err != nil {
		if !errors.Is(err, services.ErrAIUnavailable) {
			err = fmt.Errorf("%w: %w", services.ErrAIUnavailable, err)
		}
		return models.Rating{}, err
	}
	h.log.Debug(ctx, "critic replied", logger.String("engine", h.critic.Name()), logger.String("reply", raw))

	rating, err := services.ParseRating(raw)
	if err != nil {
		return models.Rating{}, fmt.Errorf("%w: %w", services.ErrAIUnavailable, err)
	}
	return rating, nil
}

// resolveContentType keeps a declared image/* type and otherwise sniffs the
// bytes, so clients that send application/octet-stream still get through.
func resolveContentType(declared string, data []byte) string {
	if strings.HasPrefix(strings.ToLower(declared), "image/") {
		return declared
	}
	if len(data) == 0 {
		return declared
	}
	return mimetype.Detect(data).String()
}

var errTooLarge = errors.New("upload exceeds limit")

// readUpload reads at most limit bytes; the declared part size is not trusted.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
