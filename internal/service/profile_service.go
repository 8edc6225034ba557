package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/pra2107tham/Reeva/configs"
)

type IGUserInfo struct {
	UserID         string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
}

// ProfileService reads display fields for an Instagram user from the Graph
// API. Callers treat failures as cosmetic: a profile row works fine without
// a username.
type ProfileService interface {
	FetchDisplay(ctx context.Context, igID string) (*IGUserInfo, error)
}

type profileService struct {
	cfg    config.Config
	client *http.Client
}

func NewProfileService(cfg config.Config) ProfileService {
	return &profileService{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *profileService) FetchDisplay(ctx context.Context, igID string) (*IGUserInfo, error) {
	reqUrl := fmt.Sprintf(
		"%s/%s?fields=username,name,profile_picture_url&access_token=%s",
		s.cfg.GraphAPIBase, igID, s.cfg.PageAccessToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error response from Instagram (status code: %d)", resp.StatusCode)
	}

	var userInfo IGUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}
