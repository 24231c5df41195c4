package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/renefichtmueller/ctxpost-sub002/internal/models"
	"github.com/renefichtmueller/ctxpost-sub002/internal/repository"
	"github.com/renefichtmueller/ctxpost-sub002/internal/transfer"
)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	MarkEvergreen(ctx context.Context, userID, postID int64, evergreen bool) error
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db    *sql.DB
	pr    repository.PostRepository
	tr    repository.PostTargetRepository
	ar    repository.SocialAccountRepository
	ma    repository.MediaAssetRepository
	pm    repository.PostMediaRepository
	media *MediaStorage
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	tr repository.PostTargetRepository,
	ar repository.SocialAccountRepository,
	ma repository.MediaAssetRepository,
	pm repository.PostMediaRepository,
	media *MediaStorage) PostService {
	return &postService{
		db:    db,
		pr:    pr,
		tr:    tr,
		ar:    ar,
		ma:    ma,
		pm:    pm,
		media: media,
	}
}

var validContentTypes = map[string]bool{
	models.ContentTypeText:  true,
	models.ContentTypeLink:  true,
	models.ContentTypeImage: true,
	models.ContentTypeVideo: true,
}

// CreatePost persists the post, its delivery targets and any media in one
// transaction, and returns the post id plus the delay until it is due.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error) {
	if pc == nil {
		return 0, 0, fmt.Errorf("%w: post creation data is nil", ErrInvalidInput)
	}
	if pc.Content == "" {
		return 0, 0, fmt.Errorf("%w: content cannot be empty", ErrInvalidInput)
	}
	if !validContentTypes[pc.ContentType] {
		return 0, 0, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, pc.ContentType)
	}

	status := models.PostStatusDraft
	var scheduledAt sql.NullTime
	if pc.ScheduledTime != "" {
		parsed, err := parseScheduleTime(pc.ScheduledTime)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid scheduled time format: %v", ErrInvalidInput, err)
		}
		status = models.PostStatusScheduled
		scheduledAt = sql.NullTime{Time: parsed, Valid: true}
	}

	var selectedAccounts []int64
	if err := json.Unmarshal([]byte(pc.SelectedAccounts), &selectedAccounts); err != nil {
		return 0, 0, fmt.Errorf("%w: invalid selected accounts format: %v", ErrInvalidInput, err)
	}
	if len(selectedAccounts) == 0 {
		return 0, 0, fmt.Errorf("%w: no social accounts selected", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:      userID,
		ContentType: pc.ContentType,
		Content:     pc.Content,
		Title:       pc.Title,
		Status:      status,
		ScheduledAt: scheduledAt,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	if err = s.createTargets(ctx, tx, userID, postID, selectedAccounts); err != nil {
		return 0, 0, fmt.Errorf("error processing selected accounts: %w", err)
	}

	if len(files) > 0 {
		if err = s.processFiles(ctx, tx, userID, postID, files); err != nil {
			return 0, 0, fmt.Errorf("error processing files: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	var delay time.Duration
	if scheduledAt.Valid {
		delay = time.Until(scheduledAt.Time)
		if delay < 0 {
			delay = 0
		}
	}

	return postID, delay, nil
}

func (s *postService) createTargets(ctx context.Context, tx *sql.Tx, userID, postID int64, accounts []int64) error {
	for _, accountID := range accounts {
		exists, err := s.ar.CheckByUserID(ctx, accountID, userID)
		if err != nil {
			return fmt.Errorf("error checking social account %d: %w", accountID, err)
		}
		if !exists {
			return fmt.Errorf("%w: social account %d does not exist", ErrInvalidInput, accountID)
		}

		target := models.PostTarget{
			PostID:          postID,
			SocialAccountID: accountID,
			Status:          models.TargetStatusScheduled,
		}
		if _, err := s.tr.Create(ctx, tx, &target); err != nil {
			return fmt.Errorf("error saving target for account %d: %w", accountID, err)
		}
	}
	return nil
}

func (s *postService) processFiles(ctx context.Context, tx *sql.Tx, userID, postID int64, files []*multipart.FileHeader) error {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	for i, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer fileContent.Close()

		fileBytes, err := io.ReadAll(fileContent)
		if err != nil {
			return fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return fmt.Errorf("%w: file type %s is not allowed", ErrInvalidInput, fileType.Extension)
		}

		assetID, err := s.saveFile(ctx, tx, userID, fileType.MIME.Value, fileBytes)
		if err != nil {
			return fmt.Errorf("error uploading file: %w", err)
		}

		postMedia := models.PostMedia{
			PostID:       postID,
			AssetID:      assetID,
			DisplayOrder: i,
		}
		if err := s.pm.Create(ctx, tx, &postMedia); err != nil {
			return fmt.Errorf("error saving media file: %w", err)
		}
	}
	return nil
}

func (s *postService) saveFile(ctx context.Context, tx *sql.Tx, userID int64, fileType string, file []byte) (int64, error) {
	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	fileURL, err := s.media.Upload(ctx, key, file, fileType)
	if err != nil {
		return 0, err
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType,
		FileSize: int64(len(file)),
		FileURL:  fileURL,
	}

	assetID, err := s.ma.Create(ctx, tx, &ma)
	if err != nil {
		return 0, err
	}

	return assetID, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	if userID == 0 || postID == 0 {
		return nil, fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	}

	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, errors.New("error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errors.New("error listing posts")
	}
	return posts, nil
}

// MarkEvergreen adds a post to (or removes it from) the recycling pool. The
// flag only sticks on a PUBLISHED post; the guarded update enforces that
// against concurrent status changes.
func (s *postService) MarkEvergreen(ctx context.Context, userID, postID int64, evergreen bool) error {
	if userID == 0 || postID == 0 {
		return fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	}

	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNotFound
	}

	ok, err := s.pr.SetEvergreen(ctx, postID, evergreen)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: only published posts can be evergreen", ErrInvalidState)
	}
	return nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		return fmt.Errorf("%w: missing identifier", ErrInvalidInput)
	}

	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNotFound
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return errors.New("error removing post")
	}

	return nil
}
