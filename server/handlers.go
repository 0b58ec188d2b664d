// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/kg"
)

func (s *Server) handleGenerate(c *gin.Context) {
	var req core.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	resp, err := s.deps.Assembler.Generate(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Assembler.Status(c.Request.Context()))
}

func (s *Server) handleRetrieverStatus(c *gin.Context) {
	count, err := s.deps.Papers.Count(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":       count > 0,
		"paper_count": count,
	})
}

type buildIndexRequest struct {
	CSVPath string `json:"csv_path" binding:"required"`
}

func (s *Server) handleBuildIndex(c *gin.Context) {
	var req buildIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	indexed, err := s.deps.Indexer.Build(c.Request.Context(), req.CSVPath)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": indexed})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": core.ErrEmptyQuery.Error()})
		return
	}
	k := intQuery(c, "k", 5, 1, 20)

	if !s.deps.Retriever.Ready(c.Request.Context()) {
		s.writeError(c, fmt.Errorf("%w: evidence index not ready, build the index first", core.ErrUnavailable))
		return
	}
	evidence, skipped, err := s.deps.Retriever.Retrieve(c.Request.Context(), query, k)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": evidence,
		"skipped": skipped,
	})
}

func (s *Server) handleKGQuery(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": core.ErrEmptyQuery.Error()})
		return
	}
	limit := intQuery(c, "limit", 10, 1, 100)

	entities := kg.ExtractEntities(query)
	triples, err := s.deps.Graph.QueryTriples(c.Request.Context(), entities, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"triples":     triples,
		"total_count": len(triples),
		"note":        fmt.Sprintf("Found %d relevant triples", len(triples)),
	})
}

func (s *Server) handleKGEntities(c *gin.Context) {
	limit := intQuery(c, "limit", 20, 1, 200)

	entities, err := s.deps.Graph.Entities(c.Request.Context(),
		c.Query("entity_type"), c.Query("search_term"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entities":    entities,
		"total_count": len(entities),
	})
}

func (s *Server) handleKGRelations(c *gin.Context) {
	limit := intQuery(c, "limit", 20, 1, 200)

	relations, err := s.deps.Graph.Relations(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"relations":   relations,
		"total_count": len(relations),
	})
}

func (s *Server) handleKGNeighborhood(c *gin.Context) {
	entity := c.Param("entity")
	hops := intQuery(c, "hops", 1, 1, 3)
	limit := intQuery(c, "limit", 50, 1, 500)

	neighborhood, err := s.deps.Graph.EntityNeighborhood(c.Request.Context(), entity, hops, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"central_entity": entity,
		"hops":           hops,
		"neighborhood":   neighborhood,
	})
}

func (s *Server) handleKGPath(c *gin.Context) {
	entity1 := c.Param("entity1")
	entity2 := c.Param("entity2")
	maxLength := intQuery(c, "max_path_length", 3, 1, 5)
	limit := intQuery(c, "limit", 5, 1, 50)

	paths, err := s.deps.Graph.Paths(c.Request.Context(), entity1, entity2, maxLength, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entity1": entity1,
		"entity2": entity2,
		"paths":   paths,
	})
}

func (s *Server) handleKGStats(c *gin.Context) {
	stats, err := s.deps.Graph.Statistics(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleKGHealth(c *gin.Context) {
	healthy := s.deps.Graph.HealthCheck(c.Request.Context())
	status := "unhealthy"
	if healthy {
		status = "healthy"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"neo4j_available": s.deps.Graph.Connected(),
	})
}

type cypherRequest struct {
	Query      string         `json:"query" binding:"required"`
	Parameters map[string]any `json:"parameters"`
}

func (s *Server) handleKGCypher(c *gin.Context) {
	var req cypherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	results, err := s.deps.Graph.RunCypher(c.Request.Context(), req.Query, req.Parameters)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":        req.Query,
		"parameters":   req.Parameters,
		"results":      results,
		"result_count": len(results),
	})
}

// intQuery parses an integer query parameter with a default and inclusive
// bounds. Unparsable or out-of-range values fall back to the default.
func intQuery(c *gin.Context, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return def
	}
	return v
}
