package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/rating"
)

// Profile defaults for fields left out of POST /profiles.
const (
	defaultRating = 1200
	defaultSkill  = 0.5
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeJSON reads a bounded JSON body into v and validates its tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := fe.Field()
		if ns := fe.Namespace(); strings.Contains(ns, ".") {
			field = ns[strings.Index(ns, ".")+1:]
		}
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s: failed %s", field, fe.Tag())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// profileRequest mirrors the OpenAPI schema for POST /profiles.
type profileRequest struct {
	ID        string             `json:"id" validate:"required,max=128"`
	Rating    *float64           `json:"rating" validate:"omitempty,gte=0"`
	Skill     *float64           `json:"skill" validate:"omitempty,gte=0,lte=1"`
	LatencyMs *float64           `json:"latency_ms" validate:"omitempty,gte=0"`
	Region    string             `json:"region" validate:"max=64"`
	PlayStyle string             `json:"play_style" validate:"omitempty,oneof=aggressive defensive balanced"`
	Stats     map[string]float64 `json:"stats"`
}

func (p profileRequest) toModel() model.PlayerProfile {
	out := model.PlayerProfile{
		ID:        strings.TrimSpace(p.ID),
		Rating:    defaultRating,
		Skill:     defaultSkill,
		LatencyMs: p.LatencyMs,
		Region:    p.Region,
		PlayStyle: model.PlayStyle(p.PlayStyle),
		Stats:     p.Stats,
	}
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	if p.Skill != nil {
		out.Skill = *p.Skill
	}
	return out
}

// resultRequest mirrors the OpenAPI schema for POST /matches/results.
type resultRequest struct {
	MatchID    string     `json:"match_id" validate:"required,max=128"`
	PlayerA    string     `json:"player_a" validate:"required"`
	PlayerB    string     `json:"player_b" validate:"required,nefield=PlayerA"`
	ResultA    *float64   `json:"result_a" validate:"required"`
	ReportedAt *time.Time `json:"reported_at"`
}

func (req resultRequest) validate() error {
	if !rating.ValidOutcome(*req.ResultA) {
		return fmt.Errorf("result_a must be 0, 0.5 or 1, got %v", *req.ResultA)
	}
	return nil
}

func (req resultRequest) toModel() model.MatchResult {
	out := model.MatchResult{
		MatchID: req.MatchID,
		PlayerA: req.PlayerA,
		PlayerB: req.PlayerB,
		ResultA: *req.ResultA,
	}
	if req.ReportedAt != nil {
		out.ReportedAt = req.ReportedAt.UTC()
	}
	return out
}

// findRequest mirrors the OpenAPI schema for POST /matches/find.
type findRequest struct {
	PlayerID         string  `json:"player_id" validate:"required"`
	MaxLatencyMs     float64 `json:"max_latency_ms" validate:"gte=0"`
	RegionPreference string  `json:"region_preference" validate:"max=64"`
	Tolerance        float64 `json:"tolerance" validate:"gte=0"`
	TeamSize         int     `json:"team_size" validate:"gte=0"`
	MaxCandidates    int     `json:"max_candidates" validate:"gte=0"`
}

func (req findRequest) toModel() model.MatchRequest {
	return model.MatchRequest{
		PlayerID:         req.PlayerID,
		MaxLatencyMs:     req.MaxLatencyMs,
		RegionPreference: req.RegionPreference,
		Tolerance:        req.Tolerance,
		TeamSize:         req.TeamSize,
	}
}

type findResponse struct {
	PlayerID   string                 `json:"player_id"`
	Candidates []model.MatchCandidate `json:"candidates"`
}

// fraudRequest mirrors the OpenAPI schema for POST /fraud/analyze.
type fraudRequest struct {
	PlayerID string              `json:"player_id" validate:"max=128"`
	Events   []model.PlayerEvent `json:"events"`
}

type fraudBatchRequest struct {
	Requests []fraudRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

type fraudBatchResponse struct {
	Analyses []model.FraudAnalysis `json:"analyses"`
}

type clustersResponse struct {
	Count     int                   `json:"count"`
	Centroids []model.FeatureVector `json:"centroids"`
}
