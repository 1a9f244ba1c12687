package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/realtime"
	"harborview.com/shiftman/storage"
)

// CertificateBucket is the object-storage bucket for sick-leave
// certificates and other employee documents.
const CertificateBucket = "certificates"

type LeaveService struct {
	store    *cache.Store
	api      *v1.Client
	objects  storage.ObjectStore
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewLeaveService(store *cache.Store, api *v1.Client, objects storage.ObjectStore, log *slog.Logger) *LeaveService {
	if log == nil {
		log = slog.Default()
	}
	return &LeaveService{
		store:    store,
		api:      api,
		objects:  objects,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *LeaveService) Load() []model.LeaveRequest {
	return loadCached[model.LeaveRequest](s.store, cache.BucketLeaveRequests, s.log)
}

func (s *LeaveService) Refresh(ctx context.Context) ([]model.LeaveRequest, error) {
	return refreshList(ctx, s.store, s.api, tableLeaveRequests, nil,
		func(l model.LeaveRequest) string { return l.ID }, s.log)
}

type LeaveInput struct {
	EmployeeID string          `validate:"required"`
	StartDate  string          `validate:"required,datetime=2006-01-02"`
	EndDate    string          `validate:"required,datetime=2006-01-02"`
	Type       model.LeaveType `validate:"required,oneof=vacation sick personal unpaid"`
	Reason     string          `validate:"omitempty,max=500"`
}

// Submit files a leave request after validating the date range.
func (s *LeaveService) Submit(ctx context.Context, input LeaveInput) (*model.LeaveRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid leave request: %w", err)
	}
	if input.StartDate > input.EndDate {
		return nil, fmt.Errorf("leave start date %s is after end date %s", input.StartDate, input.EndDate)
	}

	req := model.LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Type:       input.Type,
		Status:     model.RequestPending,
		Reason:     input.Reason,
	}
	err := putOptimistic(ctx, s.store, s.api, tableLeaveRequests, req.ID, req, s.log)
	return &req, err
}

// Review approves or rejects a pending request and stamps the audit
// fields. Reviewed requests are immutable.
func (s *LeaveService) Review(ctx context.Context, requestID, reviewerID string, approve bool) (*model.LeaveRequest, error) {
	req, err := cache.GetJSON[model.LeaveRequest](s.store, cache.BucketLeaveRequests, requestID)
	if err != nil || req == nil {
		return nil, fmt.Errorf("leave request %s not found", requestID)
	}
	if req.Reviewed() {
		return nil, ErrImmutable
	}

	if approve {
		req.Status = model.RequestApproved
	} else {
		req.Status = model.RequestRejected
	}
	now := s.now().UTC()
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now

	err = putOptimistic(ctx, s.store, s.api, tableLeaveRequests, req.ID, *req, s.log)
	return req, err
}

type CertificateInput struct {
	EmployeeID  string `validate:"required"`
	FileName    string `validate:"required,max=128"`
	ContentType string `validate:"omitempty,max=64"`
}

// UploadCertificate stores the blob and files the document metadata for
// admin review. The blob upload must succeed before any metadata exists;
// there is no orphan document row pointing at a missing file.
func (s *LeaveService) UploadCertificate(ctx context.Context, input CertificateInput, content io.Reader) (*model.Document, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid certificate: %w", err)
	}

	storagePath := path.Join(input.EmployeeID, uuid.NewString()+"-"+input.FileName)
	storedPath, err := s.objects.Upload(ctx, CertificateBucket, storagePath, content, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}

	doc := model.Document{
		ID:          uuid.NewString(),
		EmployeeID:  input.EmployeeID,
		Kind:        model.DocumentSickLeave,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		StoragePath: storedPath,
		Status:      model.RequestPending,
		UploadedAt:  s.now().UTC(),
	}

	err = putOptimistic(ctx, s.store, s.api, tableDocuments, doc.ID, doc, s.log)
	return &doc, err
}

// ReviewDocument approves or rejects an uploaded document.
func (s *LeaveService) ReviewDocument(ctx context.Context, documentID, reviewerID string, approve bool) (*model.Document, error) {
	doc, err := cache.GetJSON[model.Document](s.store, cache.BucketDocuments, documentID)
	if err != nil || doc == nil {
		return nil, fmt.Errorf("document %s not found", documentID)
	}
	if doc.Status != model.RequestPending {
		return nil, ErrImmutable
	}

	if approve {
		doc.Status = model.RequestApproved
	} else {
		doc.Status = model.RequestRejected
	}
	now := s.now().UTC()
	doc.ReviewedBy = &reviewerID
	doc.ReviewedAt = &now

	err = putOptimistic(ctx, s.store, s.api, tableDocuments, doc.ID, *doc, s.log)
	return doc, err
}

// CertificateURL returns a time-limited download link for a document.
func (s *LeaveService) CertificateURL(ctx context.Context, documentID string, ttl time.Duration) (string, error) {
	doc, err := cache.GetJSON[model.Document](s.store, cache.BucketDocuments, documentID)
	if err != nil || doc == nil {
		return "", fmt.Errorf("document %s not found", documentID)
	}
	return s.objects.SignedURL(ctx, CertificateBucket, doc.StoragePath, ttl)
}

func (s *LeaveService) LoadDocuments() []model.Document {
	return loadCached[model.Document](s.store, cache.BucketDocuments, s.log)
}

func (s *LeaveService) RefreshDocuments(ctx context.Context) ([]model.Document, error) {
	return refreshList(ctx, s.store, s.api, tableDocuments, nil,
		func(d model.Document) string { return d.ID }, s.log)
}

// Watch reloads leave requests on backend row changes.
func (s *LeaveService) Watch(reg *realtime.Registry, filter string, onReload func([]model.LeaveRequest, error)) (*realtime.Subscription, error) {
	return reg.Subscribe(tableLeaveRequests, filter, realtime.EventAll, realtime.Handlers{
		OnChange: func(realtime.Event) {
			items, err := s.Refresh(context.Background())
			onReload(items, err)
		},
	})
}
