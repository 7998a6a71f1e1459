// Package services contains the Spotify Web API client used by the
// alarm: device listing, playback control, and the profile lookup used
// to confirm an authorized account.
package services
