// Package repository contains data access logic separated from HTTP
// handlers.  This file implements room persistence: creation with
// unique join-code allocation, creator-gated lifecycle transitions
// and the cascading delete of everything a room owns.
package repository

import (
	"context"      // context carries deadlines and cancellation into DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors defines the sentinel values below

	"github.com/symphozeon/backend/internal/model"
	"github.com/symphozeon/backend/internal/utils"
)

// ErrRoomNotFound is returned when a room cannot be found in the DB.
var ErrRoomNotFound = errors.New("room not found")

// ErrCodeExhausted is returned when room-code generation ran out of
// retry attempts.  With an 8-character code over a 36-character
// alphabet this is practically unreachable; surfacing it instead of
// looping forever keeps a misbehaving database from wedging the
// request.
var ErrCodeExhausted = errors.New("room code generation exhausted")

// maxCodeAttempts bounds the propose/insert retry loop for room
// codes.
const maxCodeAttempts = 100

// RoomRepo encapsulates all database queries related to rooms.
type RoomRepo struct {
	db *sql.DB // underlying connection pool
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle,
// allowing dependency injection of the database in tests and at
// startup.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create inserts a new room for the given creator and links the
// provided genre IDs, all within one transaction.  The room code is
// allocated by the propose/insert pattern: a random candidate is
// generated, checked against the index as a cheap pre-filter, then
// inserted; the UNIQUE constraint on rooms.room_code is the final
// authority and a duplicate-key violation triggers a retry with a
// fresh candidate.  After maxCodeAttempts collisions the operation
// fails with ErrCodeExhausted.  On success the room's ID, RoomCode
// and timestamp fields are populated.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room, genreIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	inserted := false
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var code string
		code, err = utils.NewRoomCode(utils.RoomCodeLength)
		if err != nil {
			return err
		}
		// Best-effort pre-filter to keep retry counts low; a
		// concurrent creation can still win the race, which the
		// insert below catches via the unique key.
		var exists bool
		if err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`, code,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`INSERT INTO rooms (creator_id, name, is_public, room_code) VALUES (?, ?, ?, ?)`,
			room.CreatorID, room.Name, room.IsPublic, code,
		)
		if err != nil {
			if isDuplicate(err) {
				err = nil // lost the race on this code, try another
				continue
			}
			return err
		}
		var id int64
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		room.ID = uint64(id)
		room.RoomCode = code
		inserted = true
		break
	}
	if !inserted {
		err = ErrCodeExhausted
		return err
	}

	for _, gid := range genreIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO room_genres (room_id, genre_id) VALUES (?, ?)`,
			room.ID, gid,
		); err != nil {
			if isDuplicate(err) {
				err = nil // same genre listed twice in the request
				continue
			}
			return err
		}
	}

	// Read the row back so callers receive DB-assigned defaults.
	err = tx.QueryRowContext(ctx,
		`SELECT is_public, is_archived, archived_date, member_count, created_at FROM rooms WHERE id = ?`,
		room.ID,
	).Scan(&room.IsPublic, &room.IsArchived, &room.ArchivedDate, &room.MemberCount, &room.CreatedAt)
	return err
}

// CodeExists reports whether a room currently holds the given code.
func (r *RoomRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`, code,
	).Scan(&exists)
	return exists, err
}

const roomColumns = `id, creator_id, name, is_public, is_archived, archived_date, room_code, member_count, created_at`

// scanRoom scans one rooms row from the given row scanner.
func scanRoom(row *sql.Row) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.CreatorID, &rm.Name, &rm.IsPublic, &rm.IsArchived,
		&rm.ArchivedDate, &rm.RoomCode, &rm.MemberCount, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// GetByID fetches a room by its ID, including its genre names.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if rm.Genres, err = r.genreNames(ctx, rm.ID); err != nil {
		return nil, err
	}
	return rm, nil
}

// GetByCode fetches a room by its join code, including genre names.
// Joining by code is the normal entry path for invited users.
func (r *RoomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE room_code = ?`, code))
	if err != nil {
		return nil, err
	}
	if rm.Genres, err = r.genreNames(ctx, rm.ID); err != nil {
		return nil, err
	}
	return rm, nil
}

// genreNames returns the genre names linked to one room.
func (r *RoomRepo) genreNames(ctx context.Context, roomID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.name FROM room_genres rg JOIN genres g ON g.id = rg.genre_id
		 WHERE rg.room_id = ? ORDER BY g.name`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ListPublic returns all public, non-archived rooms ordered newest
// first.  Genre names are omitted from the listing to keep the
// browse query cheap; clients fetch details per room.
func (r *RoomRepo) ListPublic(ctx context.Context) ([]*model.Room, error) {
	return r.list(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE is_public = 1 AND is_archived = 0 ORDER BY created_at DESC, id DESC`)
}

// ListByCreator returns all rooms created by the given user,
// archived ones included, ordered newest first.
func (r *RoomRepo) ListByCreator(ctx context.Context, creatorID uint64) ([]*model.Room, error) {
	return r.list(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE creator_id = ? ORDER BY created_at DESC, id DESC`, creatorID)
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...any) ([]*model.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Room{}
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.CreatorID, &rm.Name, &rm.IsPublic, &rm.IsArchived,
			&rm.ArchivedDate, &rm.RoomCode, &rm.MemberCount, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rm)
	}
	return out, rows.Err()
}

// Archive marks a room archived on behalf of actorID.  Only the
// creator may archive; anyone else gets ErrForbidden and the room is
// left untouched.  The archived flag and archived_date are set in a
// single UPDATE so the pairing between them can never be observed
// broken.  Re-archiving an already-archived room refreshes
// archived_date.
func (r *RoomRepo) Archive(ctx context.Context, roomID, actorID uint64) error {
	return r.lifecycle(ctx, roomID, actorID,
		`UPDATE rooms SET is_archived = 1, archived_date = UTC_TIMESTAMP() WHERE id = ?`)
}

// Activate clears a room's archived state on behalf of actorID.
// Creator-gated like Archive; archived_date is nulled in the same
// UPDATE that clears the flag.
func (r *RoomRepo) Activate(ctx context.Context, roomID, actorID uint64) error {
	return r.lifecycle(ctx, roomID, actorID,
		`UPDATE rooms SET is_archived = 0, archived_date = NULL WHERE id = ?`)
}

// SetVisibility flips a room between public and private on behalf of
// actorID.  Creator-gated.
func (r *RoomRepo) SetVisibility(ctx context.Context, roomID, actorID uint64, public bool) error {
	q := `UPDATE rooms SET is_public = 0 WHERE id = ?`
	if public {
		q = `UPDATE rooms SET is_public = 1 WHERE id = ?`
	}
	return r.lifecycle(ctx, roomID, actorID, q)
}

// Update renames a room and replaces its genre set on behalf of
// actorID.  Creator-gated like the lifecycle operations; the genre
// links are rewritten wholesale so the request body is the complete
// new tag set.
func (r *RoomRepo) Update(ctx context.Context, roomID, actorID uint64, name string, genreIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var creatorID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`, roomID,
	).Scan(&creatorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomNotFound
		}
		return err
	}
	if creatorID != actorID {
		err = ErrForbidden
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE rooms SET name = ? WHERE id = ?`, name, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM room_genres WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	for _, gid := range genreIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO room_genres (room_id, genre_id) VALUES (?, ?)`,
			roomID, gid,
		); err != nil {
			if isDuplicate(err) {
				err = nil
				continue
			}
			return err
		}
	}
	return nil
}

// lifecycle runs one creator-gated room mutation inside a
// transaction.  The room row is locked with FOR UPDATE so concurrent
// lifecycle actions on the same room serialize instead of racing,
// then the creator check decides between applying the update and
// returning ErrForbidden with no mutation.
func (r *RoomRepo) lifecycle(ctx context.Context, roomID, actorID uint64, update string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var creatorID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`, roomID,
	).Scan(&creatorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomNotFound
		}
		return err
	}
	if creatorID != actorID {
		err = ErrForbidden
		return err
	}
	_, err = tx.ExecContext(ctx, update, roomID)
	return err
}

// DeleteByIDAndCreator removes a room and everything it owns —
// custom permission grants of its memberships, memberships, votes,
// chat messages and genre links — provided actorID is the creator.
// ErrRoomNotFound is returned when the room does not exist and
// ErrForbidden when it belongs to a different user.  The deletion
// occurs within a transaction to maintain integrity.
func (r *RoomRepo) DeleteByIDAndCreator(ctx context.Context, roomID, actorID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var creatorID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`, roomID,
	).Scan(&creatorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomNotFound
		}
		return err
	}
	if creatorID != actorID {
		err = ErrForbidden
		return err
	}
	// Cascade delete: custom grants hang off memberships, so they go first.
	if _, err = tx.ExecContext(ctx,
		`DELETE mp FROM membership_permissions mp
		 JOIN memberships m ON m.id = mp.membership_id
		 WHERE m.room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM memberships WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM vibe_votes WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM room_genres WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID)
	return err
}
