// Copyright 2024 StreamR Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
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
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamr-io/streamr/base/log"
	"github.com/streamr-io/streamr/config"
	"github.com/streamr-io/streamr/dataset"
	"github.com/streamr-io/streamr/logics"
	"github.com/streamr-io/streamr/storage/data"
)

// RestServer implements the RESTful API of the recommender service.
type RestServer struct {
	Config     *config.Config
	Catalog    *dataset.Catalog
	ColdStart  *logics.ColdStart
	DataClient data.Database
	WebService *restful.WebService

	validate *validator.Validate
}

// Success is the response of write operations.
type Success struct {
	RowAffected int
}

// AuthRequest is the payload of signup and login.
type AuthRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Token is the response of a successful login.
type Token struct {
	Token string `json:"token"`
}

// WatchlistRequest is the payload of a watchlist insertion.
type WatchlistRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// SearchResult is one catalog hit of a title search.
type SearchResult struct {
	ItemId      int      `json:"item_id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	RatingCount int      `json:"rating_count"`
	MeanRating  float32  `json:"mean_rating"`
}

const (
	apiKeyHeader  = "X-API-Key"
	sessionHeader = "X-Session-Token"
)

// LogFilter tags each request with an id and logs its outcome.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	resp.Header().Set("X-Request-ID", uuid.NewString())
	chain.ProcessFilter(req, resp)
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()))
	RestAPIRequestTotal.WithLabelValues(req.Request.Method, req.SelectedRoutePath(),
		strconv.Itoa(resp.StatusCode())).Inc()
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	s.validate = validator.New()
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)
	ws.Filter(s.apiKeyFilter)

	// Recommend for a new user
	ws.Route(ws.POST("/recommend").To(s.recommend).
		Doc("Recommend catalog titles for a new user from (title, rating) pairs.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommend"}).
		Param(ws.HeaderParameter(apiKeyHeader, "secret key for RESTful API")).
		Param(ws.HeaderParameter(sessionHeader, "optional login token, stores history when set")).
		Param(ws.QueryParameter("n", "number of returned titles").DataType("integer")).
		Reads([]logics.Rating{}).
		Writes([]string{}))
	// Search the catalog
	ws.Route(ws.GET("/search").To(s.search).
		Doc("Search catalog titles.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"catalog"}).
		Param(ws.HeaderParameter(apiKeyHeader, "secret key for RESTful API")).
		Param(ws.QueryParameter("q", "query string").DataType("string")).
		Param(ws.QueryParameter("n", "number of returned items").DataType("integer")).
		Writes([]SearchResult{}))
	// Accounts
	ws.Route(ws.POST("/signup").To(s.signup).
		Doc("Register an account.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"account"}).
		Reads(AuthRequest{}).
		Writes(Success{}))
	ws.Route(ws.POST("/login").To(s.login).
		Doc("Log in and obtain a session token.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"account"}).
		Reads(AuthRequest{}).
		Writes(Token{}))
	ws.Route(ws.POST("/logout").To(s.logout).
		Doc("Invalidate a session token.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"account"}).
		Param(ws.HeaderParameter(sessionHeader, "login token")).
		Writes(Success{}))
	// Watchlist
	ws.Route(ws.GET("/watchlist").To(s.getWatchlist).
		Doc("List saved titles.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"watchlist"}).
		Param(ws.HeaderParameter(sessionHeader, "login token")).
		Writes([]data.WatchlistItem{}))
	ws.Route(ws.POST("/watchlist").To(s.insertWatchlist).
		Doc("Save a title.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"watchlist"}).
		Param(ws.HeaderParameter(sessionHeader, "login token")).
		Reads(WatchlistRequest{}).
		Writes(Success{}))
	ws.Route(ws.DELETE("/watchlist").To(s.deleteWatchlist).
		Doc("Remove a saved title.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"watchlist"}).
		Param(ws.HeaderParameter(sessionHeader, "login token")).
		Param(ws.QueryParameter("title", "title to remove").DataType("string")).
		Writes(Success{}))
	// Recommendation history
	ws.Route(ws.GET("/history").To(s.getHistory).
		Doc("List previously recommended titles.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"history"}).
		Param(ws.HeaderParameter(sessionHeader, "login token")).
		Param(ws.QueryParameter("n", "number of returned rows").DataType("integer")).
		Writes([]data.Recommendation{}))
}

func (s *RestServer) apiKeyFilter(request *restful.Request, response *restful.Response, chain *restful.FilterChain) {
	if s.Config.Server.APIKey != "" && request.HeaderParameter(apiKeyHeader) != s.Config.Server.APIKey {
		Unauthorized(response)
		return
	}
	chain.ProcessFilter(request, response)
}

// session resolves the login token of a request. The second return value
// reports whether a valid session was found.
func (s *RestServer) session(request *restful.Request) (data.Session, bool) {
	token := request.HeaderParameter(sessionHeader)
	if token == "" {
		return data.Session{}, false
	}
	session, err := s.DataClient.GetSession(request.Request.Context(), token)
	if err != nil {
		return data.Session{}, false
	}
	return session, true
}

func (s *RestServer) recommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	var ratings []logics.Rating
	if err := request.ReadEntity(&ratings); err != nil {
		BadRequest(response, err)
		return
	}
	n, err := parseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	} else if n <= 0 {
		BadRequest(response, errors.BadRequestf("n must be positive"))
		return
	} else if n > s.Config.Server.MaxReturn {
		n = s.Config.Server.MaxReturn
	}
	titles, err := s.ColdStart.Recommend(ratings)
	if err != nil {
		if errors.IsBadRequest(err) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	if len(titles) > n {
		titles = titles[:n]
	}
	if titles == nil {
		titles = []string{}
	}
	if session, ok := s.session(request); ok {
		if err = s.DataClient.InsertRecommendations(request.Request.Context(),
			session.UserID, titles, time.Now()); err != nil {
			log.ResponseLogger(response).Warn("failed to store history", zap.Error(err))
		}
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, titles)
}

func (s *RestServer) search(request *restful.Request, response *restful.Response) {
	start := time.Now()
	n, err := parseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	hits := s.Catalog.Search(request.QueryParameter("q"), n)
	results := lo.Map(hits, func(item dataset.Item, _ int) SearchResult {
		return SearchResult{
			ItemId:      item.ItemId,
			Title:       item.Title,
			Genres:      item.Genres,
			RatingCount: item.RatingCount,
			MeanRating:  item.MeanRating,
		}
	})
	if results == nil {
		results = []SearchResult{}
	}
	SearchSeconds.Observe(time.Since(start).Seconds())
	Ok(response, results)
}

func (s *RestServer) signup(request *restful.Request, response *restful.Response) {
	var req AuthRequest
	if err := request.ReadEntity(&req); err != nil {
		BadRequest(response, err)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		BadRequest(response, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	_, err = s.DataClient.InsertUser(request.Request.Context(),
		data.User{Username: req.Username, PasswordHash: string(hash)})
	if err != nil {
		if errors.IsAlreadyExists(err) {
			BadRequest(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	Ok(response, Success{RowAffected: 1})
}

func (s *RestServer) login(request *restful.Request, response *restful.Response) {
	var req AuthRequest
	if err := request.ReadEntity(&req); err != nil {
		BadRequest(response, err)
		return
	}
	user, err := s.DataClient.GetUser(request.Request.Context(), req.Username)
	if errors.IsNotFound(err) {
		Unauthorized(response)
		return
	} else if err != nil {
		InternalServerError(response, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		Unauthorized(response)
		return
	}
	token := uuid.NewString()
	if err = s.DataClient.InsertSession(request.Request.Context(),
		data.Session{Token: token, UserID: user.ID, CreatedAt: time.Now()}); err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, Token{Token: token})
}

func (s *RestServer) logout(request *restful.Request, response *restful.Response) {
	session, ok := s.session(request)
	if !ok {
		Unauthorized(response)
		return
	}
	if err := s.DataClient.DeleteSession(request.Request.Context(), session.Token); err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, Success{RowAffected: 1})
}

func (s *RestServer) getWatchlist(request *restful.Request, response *restful.Response) {
	session, ok := s.session(request)
	if !ok {
		Unauthorized(response)
		return
	}
	items, err := s.DataClient.GetWatchlist(request.Request.Context(), session.UserID)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	if items == nil {
		items = []data.WatchlistItem{}
	}
	Ok(response, items)
}

func (s *RestServer) insertWatchlist(request *restful.Request, response *restful.Response) {
	session, ok := s.session(request)
	if !ok {
		Unauthorized(response)
		return
	}
	var req WatchlistRequest
	if err := request.ReadEntity(&req); err != nil {
		BadRequest(response, err)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		BadRequest(response, err)
		return
	}
	if err := s.DataClient.InsertWatchlistItem(request.Request.Context(), session.UserID, req.Title); err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, Success{RowAffected: 1})
}

func (s *RestServer) deleteWatchlist(request *restful.Request, response *restful.Response) {
	session, ok := s.session(request)
	if !ok {
		Unauthorized(response)
		return
	}
	title := request.QueryParameter("title")
	if title == "" {
		BadRequest(response, errors.BadRequestf("title must not be empty"))
		return
	}
	if err := s.DataClient.DeleteWatchlistItem(request.Request.Context(), session.UserID, title); err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, Success{RowAffected: 1})
}

func (s *RestServer) getHistory(request *restful.Request, response *restful.Response) {
	session, ok := s.session(request)
	if !ok {
		Unauthorized(response)
		return
	}
	n, err := parseInt(request, "n", 0)
	if err != nil {
		BadRequest(response, err)
		return
	}
	rows, err := s.DataClient.GetRecommendations(request.Request.Context(), session.UserID, n)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	if rows == nil {
		rows = []data.Recommendation{}
	}
	Ok(response, rows)
}

func parseInt(request *restful.Request, name string, fallback int) (int, error) {
	s := request.QueryParameter(name)
	if s == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.BadRequestf("invalid query parameter %s: %s", name, s)
	}
	return value, nil
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns an internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Unauthorized returns an unauthorized error.
func Unauthorized(response *restful.Response) {
	if err := response.WriteError(http.StatusUnauthorized, fmt.Errorf("unauthorized")); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}
