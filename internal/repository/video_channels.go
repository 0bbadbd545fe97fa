package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"eventsales/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const videoChannelColumns = `id, name, provider, url, icon_url, api_url, api_key, extra, created_at, updated_at`

// ListVideoChannels returns one page of channels ordered by id. A limit of 0 returns all.
func (r *Repository) ListVideoChannels(ctx context.Context, limit, offset int) ([]models.VideoChannel, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM video_channels`).Scan(&total); err != nil {
		return nil, 0, err
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+videoChannelColumns+`
FROM video_channels
ORDER BY id
LIMIT $1 OFFSET $2;`, limitArg, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.VideoChannel, 0)
	for rows.Next() {
		item, err := scanVideoChannel(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) GetVideoChannel(ctx context.Context, id int64) (models.VideoChannel, error) {
	item, err := scanVideoChannel(r.pool.QueryRow(ctx, `SELECT `+videoChannelColumns+` FROM video_channels WHERE id = $1`, id))
	if err != nil {
		return item, notFound(err, ErrVideoChannelNotFound)
	}
	return item, nil
}

func (r *Repository) CreateVideoChannel(ctx context.Context, in models.VideoChannelInput) (models.VideoChannel, error) {
	extra, err := encodeExtra(in.Extra)
	if err != nil {
		return models.VideoChannel{}, err
	}
	return scanVideoChannel(r.pool.QueryRow(ctx, `
INSERT INTO video_channels (name, provider, url, icon_url, api_url, api_key, extra)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+videoChannelColumns+`;`,
		in.Name,
		in.Provider,
		in.URL,
		nullString(in.IconURL),
		nullString(in.APIURL),
		nullString(in.APIKey),
		extra,
	))
}

func (r *Repository) UpdateVideoChannel(ctx context.Context, id int64, patch models.VideoChannelPatch) (models.VideoChannel, error) {
	extra, err := encodeExtra(patch.Extra)
	if err != nil {
		return models.VideoChannel{}, err
	}
	item, err := scanVideoChannel(r.pool.QueryRow(ctx, `
UPDATE video_channels
SET name = COALESCE($2, name),
	provider = COALESCE($3, provider),
	url = COALESCE($4, url),
	icon_url = CASE WHEN $5::text IS NULL THEN icon_url ELSE NULLIF($5::text, '') END,
	api_url = CASE WHEN $6::text IS NULL THEN api_url ELSE NULLIF($6::text, '') END,
	api_key = CASE WHEN $7::text IS NULL THEN api_key ELSE NULLIF($7::text, '') END,
	extra = COALESCE($8::jsonb, extra),
	updated_at = now()
WHERE id = $1
RETURNING `+videoChannelColumns+`;`,
		id,
		stringPtrOrNil(patch.Name),
		stringPtrOrNil(patch.Provider),
		stringPtrOrNil(patch.URL),
		stringPtrOrNil(patch.IconURL),
		stringPtrOrNil(patch.APIURL),
		stringPtrOrNil(patch.APIKey),
		extra,
	))
	if err != nil {
		return item, notFound(err, ErrVideoChannelNotFound)
	}
	return item, nil
}

func (r *Repository) DeleteVideoChannel(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM video_channels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoChannelNotFound
	}
	return nil
}

func (r *Repository) GetVideoStream(ctx context.Context, id int64) (models.VideoStream, error) {
	var out models.VideoStream
	var eventID, channelID sql.NullInt64
	err := r.pool.QueryRow(ctx, `
SELECT id, name, url, event_id, channel_id
FROM video_streams
WHERE id = $1;`, id).Scan(&out.ID, &out.Name, &out.URL, &eventID, &channelID)
	if err != nil {
		return out, notFound(err, ErrVideoStreamNotFound)
	}
	out.EventID = nullInt64ToPtr(eventID)
	out.ChannelID = nullInt64ToPtr(channelID)
	return out, nil
}

func scanVideoChannel(row pgx.Row) (models.VideoChannel, error) {
	var out models.VideoChannel
	var iconURL, apiURL, apiKey sql.NullString
	var extraRaw []byte
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.Provider,
		&out.URL,
		&iconURL,
		&apiURL,
		&apiKey,
		&extraRaw,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return out, err
	}
	out.IconURL = iconURL.String
	out.APIURL = apiURL.String
	out.APIKey = apiKey.String
	if len(extraRaw) > 0 {
		if err := json.Unmarshal(extraRaw, &out.Extra); err != nil {
			return out, fmt.Errorf("decode video channel extra: %w", err)
		}
	}
	return out, nil
}

func encodeExtra(extra map[string]interface{}) (interface{}, error) {
	if extra == nil {
		return nil, nil
	}
	raw, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("encode video channel extra: %w", err)
	}
	return string(raw), nil
}
