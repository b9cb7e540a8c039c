package api

import (
	"fmt"
	"net/url"

	"tabuvrp/internal/config"
	"tabuvrp/internal/model"
	"tabuvrp/internal/opt"
)

const maxSites = 5000

func validateSolveRequest(req *model.SolveRequest) error {
	if len(req.Sites) == 0 {
		return fmt.Errorf("sites must not be empty")
	}
	if len(req.Sites) > maxSites {
		return fmt.Errorf("at most %d sites allowed, got %d", maxSites, len(req.Sites))
	}
	if req.Builder != "" {
		if _, err := opt.BuilderByName(req.Builder); err != nil {
			return err
		}
	}
	if req.Vehicles != nil && *req.Vehicles <= 0 {
		return fmt.Errorf("vehicles must be > 0")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0")
	}
	if req.TabuTenure != nil && *req.TabuTenure < 0 {
		return fmt.Errorf("tabuTenure must be >= 0")
	}
	if req.Iterations != nil && *req.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0")
	}
	if req.CallbackURL != "" {
		u, err := url.Parse(req.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("callbackUrl must be an absolute http(s) URL")
		}
	}
	return nil
}

func validateSolverConfig(cfg model.SolverConfig) error {
	if err := config.ValidateSolver(cfg); err != nil {
		return err
	}
	_, err := opt.BuilderByName(cfg.Builder)
	return err
}
