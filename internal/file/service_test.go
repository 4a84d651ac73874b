package file_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params file.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *file.MockRepository)
		wantErr   bool
	}

	suppliedID := uuid.New()

	tests := []testCase{
		{
			name: "GeneratesID",
			args: args{
				params: file.CreateParams{
					Name:      "cnab-2019-03.txt",
					Key:       "uploads/cnab-2019-03.txt",
					SizeBytes: 810,
				},
			},
			setupMock: func(m *file.MockRepository) {
				m.EXPECT().
					CreateFile(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f *file.File) error {
						f.UploadedAt = time.Now()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "KeepsSuppliedID",
			args: args{
				params: file.CreateParams{
					ID:        suppliedID,
					Name:      "cnab-2019-03.txt",
					Key:       "cnab/" + suppliedID.String() + "/cnab-2019-03.txt",
					SizeBytes: 810,
				},
			},
			setupMock: func(m *file.MockRepository) {
				m.EXPECT().
					CreateFile(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f *file.File) error {
						f.UploadedAt = time.Now()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			args: args{
				params: file.CreateParams{Name: "cnab.txt"},
			},
			setupMock: func(m *file.MockRepository) {
				m.EXPECT().
					CreateFile(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := file.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := file.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, file.StatusUploaded, got.Status)

			if tt.args.params.ID != uuid.Nil {
				assert.Equal(t, tt.args.params.ID, got.ID)
			}
		})
	}
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := file.NewMockRepository(ctrl)
	repo.EXPECT().
		GetFile(gomock.Any(), id).
		Return(nil, file.ErrNotFound)

	svc := file.NewService(repo)
	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, file.ErrNotFound)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	status := file.StatusRejected
	filter := file.ListFilter{Status: &status}

	repo := file.NewMockRepository(ctrl)
	repo.EXPECT().
		ListFiles(gomock.Any(), filter).
		Return([]*file.File{
			{ID: uuid.New(), Status: file.StatusRejected},
		}, nil)

	svc := file.NewService(repo)
	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStatus_CanTransition(t *testing.T) {
	type testCase struct {
		name string
		from file.Status
		to   file.Status
		want bool
	}

	tests := []testCase{
		{name: "UploadedToProcessing", from: file.StatusUploaded, to: file.StatusProcessing, want: true},
		{name: "UploadedToProcessed", from: file.StatusUploaded, to: file.StatusProcessed, want: false},
		{name: "ProcessingToProcessed", from: file.StatusProcessing, to: file.StatusProcessed, want: true},
		{name: "ProcessingToRejected", from: file.StatusProcessing, to: file.StatusRejected, want: true},
		{name: "ProcessingReentry", from: file.StatusProcessing, to: file.StatusProcessing, want: true},
		{name: "ProcessedIsTerminal", from: file.StatusProcessed, to: file.StatusProcessing, want: false},
		{name: "RejectedIsTerminal", from: file.StatusRejected, to: file.StatusProcessing, want: false},
		{name: "RejectedStays", from: file.StatusRejected, to: file.StatusProcessed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, file.StatusUploaded.Terminal())
	assert.False(t, file.StatusProcessing.Terminal())
	assert.True(t, file.StatusProcessed.Terminal())
	assert.True(t, file.StatusRejected.Terminal())
}

func TestTruncateError(t *testing.T) {
	short := "line 1: expected 80 bytes, got 79"
	assert.Equal(t, short, file.TruncateError(short))

	long := strings.Repeat("x", file.MaxErrorLength+500)
	got := file.TruncateError(long)
	assert.Len(t, got, file.MaxErrorLength)

	exact := strings.Repeat("y", file.MaxErrorLength)
	assert.Equal(t, exact, file.TruncateError(exact))
}
