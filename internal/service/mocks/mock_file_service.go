package mocks

import (
	"context"

	"filegate/internal/auth"
	"filegate/internal/model"
	"filegate/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, in service.UploadInput) (*model.Upload, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

func (m *MockFileService) Sign(ctx context.Context, in service.SignInput) (*model.SignedLink, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SignedLink), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, fileKey string, caller auth.Identity) error {
	args := m.Called(ctx, fileKey, caller)
	return args.Error(0)
}
