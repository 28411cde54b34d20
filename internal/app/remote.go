package service

import (
	"context"

	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/stats"
)

// Remote is the backend the service relays to. *sportapi.Client implements it.
type Remote interface {
	recognition.Recognizer

	List(ctx context.Context, page, size int) ([]sport.Sport, error)
	Insert(ctx context.Context, s *sport.Sport) error
	Update(ctx context.Context, s *sport.Sport) error
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, file []byte, filename, vendor string) error
	Stats(ctx context.Context, q stats.Query) (*stats.Summary, error)

	Register(ctx context.Context, name, password, nickname string) error
	Login(ctx context.Context, name, password string) error
	Logout(ctx context.Context) error
	Info(ctx context.Context) (sportapi.UserInfo, error)
	UploadAvatar(ctx context.Context, data []byte, filename string) (string, error)
	Session() (sportapi.Session, error)
}

var _ Remote = (*sportapi.Client)(nil)
