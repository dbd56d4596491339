// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the lookup pipeline over HTTP.
package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/addrlookup/geocode"
	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/verify"
)

// Server serves the HTTP API.
type Server struct {
	svc *lookup.Service
}

// NewServer returns a server over svc.
func NewServer(svc *lookup.Service) *Server {
	return &Server{svc: svc}
}

// Register adds the API routes to r.
func (s *Server) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/lookup", s.lookup)
	api.GET("/stats", s.stats)
	api.GET("/review", s.review)
	api.GET("/records/nearby", s.nearby)
	api.GET("/cache/stats", s.cacheStats)
	api.DELETE("/cache", s.clearCache)
	api.POST("/verify", s.verify)
}

// Run serves the API on addr until it fails.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Register(r)

	log.Printf("✓ listening on http://%s", addr)

	return r.Run(addr)
}

// LookupResponse is the answer to a lookup.
type LookupResponse struct {
	Source model.Source         `json:"source"`
	Record *model.AddressRecord `json:"record"`
	Error  string               `json:"error,omitempty"`
}

// VerifyRequest asks to verify the address of a company.
type VerifyRequest struct {
	Company string `json:"company" binding:"required"`
	Site    string `json:"site"`
}

// VerifyResponse is the answer to a VerifyRequest.
type VerifyResponse struct {
	LookupResponse
	Verification verify.Verification `json:"verification"`
}

// lookupStatus maps a lookup outcome to an HTTP status.
func lookupStatus(src model.Source, err error) int {
	switch {
	case geocode.IsQuotaExceeded(err), geocode.IsRateLimit(err):
		return http.StatusTooManyRequests
	case geocode.IsTimeout(err):
		return http.StatusGatewayTimeout
	case err != nil:
		return http.StatusBadGateway
	case src == model.SourceInvalidInput:
		return http.StatusBadRequest
	case src == model.SourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

func (s *Server) resolve(ctx *gin.Context, company, site string) (LookupResponse, int) {
	r, src, err := s.svc.Lookup(ctx.Request.Context(), company, site)
	resp := LookupResponse{Source: src, Record: r}

	if err != nil {
		log.Printf("✗ lookup %q: %v", company, err)
		resp.Error = err.Error()
	}

	return resp, lookupStatus(src, err)
}

func (s *Server) lookup(ctx *gin.Context) {
	company := ctx.Query("company")
	if company == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "company query parameter is required"})

		return
	}

	resp, status := s.resolve(ctx, company, ctx.Query("site"))
	ctx.JSON(status, resp)
}

func (s *Server) stats(ctx *gin.Context) {
	st, err := s.svc.Stats()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, st)
}

func (s *Server) review(ctx *gin.Context) {
	records, err := s.svc.ReviewQueue()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if records == nil {
		records = []*model.AddressRecord{}
	}

	ctx.JSON(http.StatusOK, records)
}

func (s *Server) nearby(ctx *gin.Context) {
	lat, errLat := strconv.ParseFloat(ctx.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(ctx.Query("lng"), 64)

	if err := errors.Join(errLat, errLng); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be numbers"})

		return
	}

	k, err := strconv.Atoi(ctx.DefaultQuery("k", "1"))
	if err != nil || k < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid k parameter"})

		return
	}

	ranked, err := s.svc.Nearby(lat, lng, k)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, ranked)
}

func (s *Server) cacheStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.svc.Cache().Stats())
}

func (s *Server) clearCache(ctx *gin.Context) {
	if err := s.svc.Cache().Clear(); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) verify(ctx *gin.Context) {
	var req VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	resp, status := s.resolve(ctx, req.Company, req.Site)
	if resp.Record == nil {
		ctx.JSON(status, resp)

		return
	}

	v, err := s.svc.Verify(ctx.Request.Context(), resp.Record)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, VerifyResponse{LookupResponse: resp, Verification: v})
}
