// Copyright 2024 StreamR Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package data persists the application state around the recommender:
// accounts, sessions, watchlists and recommendation history. The catalog
// itself is never persisted here; it lives in an in-memory snapshot.
package data

import (
	"context"
	"time"

	"github.com/juju/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrUserNotExist    = errors.NotFoundf("user")
	ErrSessionNotExist = errors.NotFoundf("session")
	ErrUserExist       = errors.AlreadyExistsf("user")
)

// User is a registered account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:100"`
	PasswordHash string `gorm:"size:200"`
}

// Session is an opaque login token.
type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	UserID    uint   `gorm:"index"`
	CreatedAt time.Time
}

// WatchlistItem is a title a user saved for later.
type WatchlistItem struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"index;uniqueIndex:idx_watchlist_user_title"`
	Title  string `gorm:"size:255;uniqueIndex:idx_watchlist_user_title"`
}

// Recommendation is one recommended title kept as history.
type Recommendation struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index"`
	Title         string `gorm:"size:255"`
	RecommendedOn time.Time
}

// Database is the storage interface of the application store.
type Database interface {
	Init() error
	Close() error
	Purge() error
	InsertUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, username string) (User, error)
	InsertSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	InsertWatchlistItem(ctx context.Context, userID uint, title string) error
	GetWatchlist(ctx context.Context, userID uint) ([]WatchlistItem, error)
	DeleteWatchlistItem(ctx context.Context, userID uint, title string) error
	InsertRecommendations(ctx context.Context, userID uint, titles []string, timestamp time.Time) error
	GetRecommendations(ctx context.Context, userID uint, n int) ([]Recommendation, error)
}

// SQLDatabase is the gorm implementation of Database.
type SQLDatabase struct {
	client *gorm.DB
}

// Open connects a SQLite application store.
func Open(dsn string) (Database, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &SQLDatabase{client: client}, nil
}

// Init creates tables if they do not exist.
func (db *SQLDatabase) Init() error {
	return errors.Trace(db.client.AutoMigrate(&User{}, &Session{}, &WatchlistItem{}, &Recommendation{}))
}

func (db *SQLDatabase) Close() error {
	sqlDB, err := db.client.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(sqlDB.Close())
}

// Purge removes all rows, for tests.
func (db *SQLDatabase) Purge() error {
	for _, model := range []any{&Session{}, &WatchlistItem{}, &Recommendation{}, &User{}} {
		if err := db.client.Where("1 = 1").Delete(model).Error; err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (db *SQLDatabase) InsertUser(ctx context.Context, user User) (User, error) {
	var count int64
	if err := db.client.WithContext(ctx).Model(&User{}).
		Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return User{}, errors.Trace(err)
	}
	if count > 0 {
		return User{}, errors.Trace(ErrUserExist)
	}
	if err := db.client.WithContext(ctx).Create(&user).Error; err != nil {
		return User{}, errors.Trace(err)
	}
	return user, nil
}

func (db *SQLDatabase) GetUser(ctx context.Context, username string) (User, error) {
	var user User
	err := db.client.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, errors.Trace(ErrUserNotExist)
	} else if err != nil {
		return User{}, errors.Trace(err)
	}
	return user, nil
}

func (db *SQLDatabase) InsertSession(ctx context.Context, session Session) error {
	return errors.Trace(db.client.WithContext(ctx).Create(&session).Error)
}

func (db *SQLDatabase) GetSession(ctx context.Context, token string) (Session, error) {
	var session Session
	err := db.client.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, errors.Trace(ErrSessionNotExist)
	} else if err != nil {
		return Session{}, errors.Trace(err)
	}
	return session, nil
}

func (db *SQLDatabase) DeleteSession(ctx context.Context, token string) error {
	return errors.Trace(db.client.WithContext(ctx).Where("token = ?", token).Delete(&Session{}).Error)
}

func (db *SQLDatabase) InsertWatchlistItem(ctx context.Context, userID uint, title string) error {
	item := WatchlistItem{UserID: userID, Title: title}
	err := db.client.WithContext(ctx).Where(&item).FirstOrCreate(&item).Error
	return errors.Trace(err)
}

func (db *SQLDatabase) GetWatchlist(ctx context.Context, userID uint) ([]WatchlistItem, error) {
	var items []WatchlistItem
	err := db.client.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, errors.Trace(err)
}

func (db *SQLDatabase) DeleteWatchlistItem(ctx context.Context, userID uint, title string) error {
	return errors.Trace(db.client.WithContext(ctx).
		Where("user_id = ? and title = ?", userID, title).Delete(&WatchlistItem{}).Error)
}

func (db *SQLDatabase) InsertRecommendations(ctx context.Context, userID uint, titles []string, timestamp time.Time) error {
	if len(titles) == 0 {
		return nil
	}
	rows := make([]Recommendation, 0, len(titles))
	for _, title := range titles {
		rows = append(rows, Recommendation{UserID: userID, Title: title, RecommendedOn: timestamp})
	}
	return errors.Trace(db.client.WithContext(ctx).CreateInBatches(rows, 100).Error)
}

func (db *SQLDatabase) GetRecommendations(ctx context.Context, userID uint, n int) ([]Recommendation, error) {
	var rows []Recommendation
	tx := db.client.WithContext(ctx).Where("user_id = ?", userID).Order("id desc")
	if n > 0 {
		tx = tx.Limit(n)
	}
	err := tx.Find(&rows).Error
	return rows, errors.Trace(err)
}
