package domain

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

const maxCaptionLength = 2000

type ContentDomain interface {
	SaveVerse(context.Context, *model.SaveVerseRequest) (*model.SaveVerseResponse, error)
	CreatePost(context.Context, *model.CreatePostRequest) (*model.CreatePostResponse, error)
	CompleteCourse(context.Context, *model.CompleteCourseRequest) (*model.CompleteCourseResponse, error)
}

type contentDomain struct {
	verseRepo   repository.VerseRepository
	postRepo    repository.PostRepository
	courseRepo  repository.CourseRepository
	eventLogger EventLogger
	clock       dateutil.Clock
}

func NewContentDomain(
	verseRepo repository.VerseRepository,
	postRepo repository.PostRepository,
	courseRepo repository.CourseRepository,
	eventLogger EventLogger,
	clock dateutil.Clock,
) *contentDomain {
	return &contentDomain{
		verseRepo:   verseRepo,
		postRepo:    postRepo,
		courseRepo:  courseRepo,
		eventLogger: eventLogger,
		clock:       clock,
	}
}

func (d *contentDomain) SaveVerse(
	ctx context.Context, req *model.SaveVerseRequest,
) (*model.SaveVerseResponse, error) {
	reference := strings.TrimSpace(sanitize(req.Reference))
	if reference == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty verse reference")
	}

	note := strings.TrimSpace(sanitize(req.Note))
	verse := &entity.SavedVerse{
		ID:        uuid.NewString(),
		UserID:    xcontext.RequestUserID(ctx),
		Reference: reference,
		Note:      sql.NullString{String: note, Valid: note != ""},
		CreatedAt: d.clock.Now(),
	}

	if err := d.verseRepo.Create(ctx, verse); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save verse: %v", err)
		return nil, errorx.Unknown
	}

	eventType := entity.VerseSave
	if verse.Note.Valid {
		eventType = entity.VerseSaveWithNote
	}
	accrue(ctx, d.eventLogger, verse.UserID, eventType)

	return &model.SaveVerseResponse{ID: verse.ID}, nil
}

func (d *contentDomain) CreatePost(
	ctx context.Context, req *model.CreatePostRequest,
) (*model.CreatePostResponse, error) {
	kind := entity.PostKind(req.Kind)
	if kind != entity.PostImage && kind != entity.PostVideo {
		return nil, errorx.New(errorx.BadRequest, "Invalid post kind %s", req.Kind)
	}

	if _, err := url.ParseRequestURI(req.MediaURL); err != nil {
		xcontext.Logger(ctx).Debugf("Invalid media url: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid media url")
	}

	caption := sanitize(req.Caption)
	if len(caption) > maxCaptionLength {
		return nil, errorx.New(errorx.BadRequest, "Caption is too long")
	}

	post := &entity.Post{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   xcontext.RequestUserID(ctx),
		Kind:     kind,
		Caption:  caption,
		MediaURL: req.MediaURL,
	}

	if err := d.postRepo.Create(ctx, post); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create post: %v", err)
		return nil, errorx.Unknown
	}

	accrue(ctx, d.eventLogger, post.UserID, entity.PostContent)

	return &model.CreatePostResponse{ID: post.ID}, nil
}

func (d *contentDomain) CompleteCourse(
	ctx context.Context, req *model.CompleteCourseRequest,
) (*model.CompleteCourseResponse, error) {
	if req.CourseID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty course id")
	}

	requestUserID := xcontext.RequestUserID(ctx)
	changed, err := d.courseRepo.Complete(ctx, requestUserID, req.CourseID, d.clock.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete course: %v", err)
		return nil, errorx.Unknown
	}

	// Completing a course twice earns nothing.
	if changed {
		accrue(ctx, d.eventLogger, requestUserID, entity.CourseComplete)
	}

	return &model.CompleteCourseResponse{Completed: changed}, nil
}
