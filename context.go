package reactqa

import "context"

type episodeIDKey struct{}

// ContextWithEpisodeID returns a context carrying the episode id. The executor sets it so
// that model and tool hooks can correlate events with an episode.
func ContextWithEpisodeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, episodeIDKey{}, id)
}

// EpisodeIDFromContext returns the episode id stored in ctx, or an empty string.
func EpisodeIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(episodeIDKey{}).(string)
	return id
}
