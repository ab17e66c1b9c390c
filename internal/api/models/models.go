// Package models holds the request and response bodies of the HTTP API.
package models

import (
	"time"

	"github.com/Tubbz-alt/thor/internal/params"
)

// Health check models
type HealthData struct {
	Status    string `json:"status" example:"ok" doc:"Service status"`
	Message   string `json:"message" example:"API is healthy" doc:"Status message"`
	Sessions  int    `json:"sessions" example:"12" doc:"Parameter sessions resolved since start"`
	Failures  int    `json:"failures" example:"1" doc:"Sessions that failed to parse or validate"`
	Warnings  int    `json:"warnings" example:"0" doc:"Validation warnings issued"`
	LastError string `json:"last_error,omitempty" doc:"Message of the most recent failure"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-10-01T12:00:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"ci-381" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Resolve models
type ResolveRequestData struct {
	Args      []string `json:"args" example:"[\"-cf\",\"/etc/thor/low_delay.cfg\",\"-qp\",\"30\"]" doc:"Encoder command line without the program name"`
	SkipProbe bool     `json:"skip_probe,omitempty" example:"false" doc:"Do not read the YUV4MPEG2 header of the input file"`
}

type ResolveRequest struct {
	Body ResolveRequestData
}

// HeaderData describes the YUV4MPEG2 stream header that overrode the configuration.
type HeaderData struct {
	Width     int     `json:"width" example:"352"`
	Height    int     `json:"height" example:"288"`
	FrameRate float64 `json:"frame_rate" example:"30"`
	AspectNum int     `json:"aspect_num" example:"1"`
	AspectDen int     `json:"aspect_den" example:"1"`
	Subsample int     `json:"subsample" example:"420"`
	BitDepth  int     `json:"bit_depth" example:"8"`
}

type ResolveData struct {
	Params   *params.Params    `json:"params" doc:"Resolved encoder parameters"`
	Warnings []string          `json:"warnings" doc:"Adjustments made during validation"`
	Origins  map[string]string `json:"origins" doc:"Where each parameter's final value came from"`
	Includes []string          `json:"includes" doc:"Configuration files read, in first-entry order"`
	Header   *HeaderData       `json:"header,omitempty" doc:"Stream header of the input file, if one was applied"`
}

type ResolveResponse struct {
	Body ResolveData
}

// Registry models
type RegistryEntry struct {
	Name    string `json:"name" example:"-qp" doc:"Command line name"`
	Kind    string `json:"kind" example:"integer" doc:"Value kind: string, integer, float, flag or integer-list"`
	Default string `json:"default,omitempty" example:"32" doc:"Default applied before any argument"`
	Help    string `json:"help" doc:"Description"`
}

type RegistryData struct {
	Entries []RegistryEntry `json:"entries" doc:"Registered parameters in registration order"`
	Count   int             `json:"count" example:"62" doc:"Number of entries"`
}

type RegistryResponse struct {
	Body RegistryData
}

// Log models
type LogsRequest struct {
	Limit  int    `query:"limit" default:"100" minimum:"0" maximum:"500" doc:"Most recent entries to return, 0 for all"`
	Module string `query:"module" doc:"Only return entries from this module"`
}

type LogEntryData struct {
	Timestamp  time.Time      `json:"timestamp" doc:"When the record was logged"`
	Level      string         `json:"level" example:"warn"`
	Module     string         `json:"module" example:"params"`
	Message    string         `json:"message" example:"Cannot open config file"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries"`
	Count   int            `json:"count" example:"20"`
}

type LogsResponse struct {
	Body LogsData
}

// StreamOpened is the first message on every event stream.
type StreamOpened struct {
	Message   string `json:"message" example:"SSE connection established"`
	Timestamp string `json:"timestamp" example:"2026-10-19T08:00:00Z"`
}
