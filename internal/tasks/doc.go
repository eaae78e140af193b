// Package tasks turns raw media server responses into the compact view models the proxy
// endpoints return.
//
// # Sessions
//
// [BuildSessions] maps each active playback to a [models.Session]. Episodes are titled by
// series name and labelled with [EpisodeLabel]. [IsTranscoding] checks the part and
// stream decisions; live playbacks additionally pass through [LiveTranscodeSignals],
// a set of weaker hints OR-ed together because live delivery rarely reports a direct
// transcode decision.
//
// # Library stats
//
// [CollectLibraryStats] issues one size request per counted section (movies and shows by
// their full listing, music by albums). Requests are not cached; pacing is left to the
// media server client.
//
// # Resources
//
// [SummarizeResources] counts transcodes and streams and splits reported bandwidth into
// LAN and WAN by each playback's network location.
package tasks
