package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/syncstream/server/internal/repository/mirror"
)

type repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *repo {
	return &repo{db: db}
}

// InsertRoom writes the room row together with its host's member row.
func (r *repo) InsertRoom(ctx context.Context, params *mirror.InsertRoomParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mirror.Room{
			Code:       params.Code,
			HostConnId: params.HostConnId,
			CreatedAt:  time.Now(),
		}).Error; err != nil {
			return err
		}

		return tx.Create(&mirror.RoomMember{
			ConnId:   params.HostConnId,
			RoomCode: params.Code,
			Username: params.Username,
			IsHost:   true,
		}).Error
	})
}

func (r *repo) InsertMember(ctx context.Context, params *mirror.InsertMemberParams) error {
	return r.db.WithContext(ctx).Create(&mirror.RoomMember{
		ConnId:   params.ConnId,
		RoomCode: params.RoomCode,
		Username: params.Username,
		IsHost:   params.IsHost,
	}).Error
}

func (r *repo) DeleteMember(ctx context.Context, connId string) error {
	return r.db.WithContext(ctx).Delete(&mirror.RoomMember{}, "conn_id = ?", connId).Error
}

// SetHost records a host failover: the room's host column and the promoted
// member's flag are updated together.
func (r *repo) SetHost(ctx context.Context, params *mirror.SetHostParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&mirror.Room{}).
			Where("code = ?", params.RoomCode).
			Update("host_conn_id", params.ConnId).Error; err != nil {
			return err
		}

		return tx.Model(&mirror.RoomMember{}).
			Where("conn_id = ?", params.ConnId).
			Update("is_host", true).Error
	})
}

func (r *repo) UpdatePlayback(ctx context.Context, params *mirror.UpdatePlaybackParams) error {
	return r.db.WithContext(ctx).Model(&mirror.Room{}).
		Where("code = ?", params.RoomCode).
		Updates(map[string]any{
			"video_id":        params.VideoId,
			"current_time":    params.CurrentTime,
			"is_playing":      params.IsPlaying,
			"background_play": params.BackgroundPlay,
		}).Error
}

// RewriteQueue replaces the room's queue rows wholesale, keeping the dense
// position ordering of the in-memory queue.
func (r *repo) RewriteQueue(ctx context.Context, roomCode string, entries []mirror.QueueEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&mirror.QueueItem{}, "room_code = ?", roomCode).Error; err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}

		items := make([]mirror.QueueItem, 0, len(entries))
		for _, entry := range entries {
			items = append(items, mirror.QueueItem{
				RoomCode: roomCode,
				VideoId:  entry.VideoId,
				Title:    entry.Title,
				Position: entry.Position,
			})
		}

		return tx.Create(&items).Error
	})
}

// DeleteRoom removes the room and queue rows. Member rows are deleted one
// by one as members disconnect.
func (r *repo) DeleteRoom(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&mirror.Room{}, "code = ?", code).Error; err != nil {
			return err
		}

		return tx.Delete(&mirror.QueueItem{}, "room_code = ?", code).Error
	})
}
