package handlers

import (
	"net/http"
	"strconv"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/schema"
)

// ListVideoChannels serves the channel collection. Admins get the full field
// set, everybody else the public one.
func (h *Handler) ListVideoChannels(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	page, err := jsonapi.ParsePage(r.URL.Query())
	if err != nil {
		h.handleError(logger, w, "list_video_channels", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	full, err := h.isAdminCaller(ctx, r)
	if err != nil {
		h.handleError(logger, w, "list_video_channels", err)
		return
	}
	items, total, err := h.store.ListVideoChannels(ctx, page.Limit(), page.Offset())
	if err != nil {
		h.handleError(logger, w, "list_video_channels", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, jsonapi.Many(
		schema.VideoChannels(items, full),
		jsonapi.PageMeta(total),
		jsonapi.PageLinks(r.URL.Path, r.URL.Query(), page, total),
	))
}

func (h *Handler) GetVideoChannel(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := idParam(r, "id", repository.ErrVideoChannelNotFound)
	if err != nil {
		h.handleError(logger, w, "get_video_channel", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	full, err := h.isAdminCaller(ctx, r)
	if err != nil {
		h.handleError(logger, w, "get_video_channel", err)
		return
	}
	channel, err := h.store.GetVideoChannel(ctx, id)
	if err != nil {
		h.handleError(logger, w, "get_video_channel", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, jsonapi.One(schema.VideoChannel(channel, full)))
}

// GetStreamVideoChannel serves the channel a video stream is attached to.
func (h *Handler) GetStreamVideoChannel(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	streamID, err := idParam(r, "video_stream_id", repository.ErrVideoStreamNotFound)
	if err != nil {
		h.handleError(logger, w, "get_stream_video_channel", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	full, err := h.isAdminCaller(ctx, r)
	if err != nil {
		h.handleError(logger, w, "get_stream_video_channel", err)
		return
	}
	stream, err := h.store.GetVideoStream(ctx, streamID)
	if err != nil {
		h.handleError(logger, w, "get_stream_video_channel", err)
		return
	}
	if stream.ChannelID == nil {
		h.handleError(logger, w, "get_stream_video_channel", repository.ErrVideoChannelNotFound)
		return
	}
	channel, err := h.store.GetVideoChannel(ctx, *stream.ChannelID)
	if err != nil {
		h.handleError(logger, w, "get_stream_video_channel", err)
		return
	}
	jsonapi.Write(w, http.StatusOK, jsonapi.One(schema.VideoChannel(channel, full)))
}

func (h *Handler) CreateVideoChannel(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var in models.VideoChannelInput
	if err := jsonapi.DecodeResource(r.Body, schema.TypeVideoChannel, "", &in); err != nil {
		h.handleError(logger, w, "create_video_channel", err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		h.handleError(logger, w, "create_video_channel", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	channel, err := h.store.CreateVideoChannel(ctx, in)
	if err != nil {
		h.handleError(logger, w, "create_video_channel", err)
		return
	}
	h.invalidateChannels(r, logger)

	logger.Info("create_video_channel", "status", "success", "video_channel_id", channel.ID)
	res := schema.VideoChannel(channel, true)
	w.Header().Set("Location", res.Links["self"])
	jsonapi.Write(w, http.StatusCreated, jsonapi.One(res))
}

func (h *Handler) UpdateVideoChannel(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := idParam(r, "id", repository.ErrVideoChannelNotFound)
	if err != nil {
		h.handleError(logger, w, "update_video_channel", err)
		return
	}
	var patch models.VideoChannelPatch
	if err := jsonapi.DecodeResource(r.Body, schema.TypeVideoChannel, strconv.FormatInt(id, 10), &patch); err != nil {
		h.handleError(logger, w, "update_video_channel", err)
		return
	}
	if err := h.validator.Struct(patch); err != nil {
		h.handleError(logger, w, "update_video_channel", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	channel, err := h.store.UpdateVideoChannel(ctx, id, patch)
	if err != nil {
		h.handleError(logger, w, "update_video_channel", err)
		return
	}
	h.invalidateChannels(r, logger)

	logger.Info("update_video_channel", "status", "success", "video_channel_id", id)
	jsonapi.Write(w, http.StatusOK, jsonapi.One(schema.VideoChannel(channel, true)))
}

func (h *Handler) DeleteVideoChannel(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := idParam(r, "id", repository.ErrVideoChannelNotFound)
	if err != nil {
		h.handleError(logger, w, "delete_video_channel", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.store.DeleteVideoChannel(ctx, id); err != nil {
		h.handleError(logger, w, "delete_video_channel", err)
		return
	}
	h.invalidateChannels(r, logger)

	logger.Info("delete_video_channel", "status", "success", "video_channel_id", id)
	jsonapi.Write(w, http.StatusOK, jsonapi.Deleted())
}

// invalidateChannels drops cached public channel responses after a write.
func (h *Handler) invalidateChannels(r *http.Request, logger actionLogger) {
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	if err := h.cache.Invalidate(ctx); err != nil {
		logger.Warn("invalidate_video_channels", "status", "error", "error", err)
	}
}
