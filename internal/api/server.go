package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/erikkrieg/gguf/internal/logger"
	"github.com/erikkrieg/gguf/pkg/gguf"
)

// Server exposes the catalog over HTTP. All endpoints are read-only.
type Server struct {
	catalog *Catalog
	log     logger.Logger
}

func NewServer(catalog *Catalog, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{catalog: catalog, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)
	e.GET("/v1/models", s.handleListModels)
	e.GET("/v1/models/:name", s.handleGetModel)
	e.GET("/v1/models/:name/metadata", s.handleGetMetadata)
	e.GET("/v1/models/:name/metadata/:key", s.handleGetMetadataKey)
}

// requestID tags each response so log lines and replies can be correlated.
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		return next(c)
	}
}

func (s *Server) handleListModels(c *echo.Context) error {
	files, err := s.catalog.List()
	if err != nil {
		s.log.Error("list models", "error", err)
		return writeServerError(c, err.Error())
	}

	models := make([]ModelSummary, 0, len(files))
	for _, f := range files {
		summary := ModelSummary{
			Name:      f.Name,
			SizeBytes: f.Size,
		}
		// A file that fails to decode still shows up in the listing so the
		// operator can see what is wrong with it.
		hdr, _, err := s.catalog.Header(f.Name)
		if err != nil {
			summary.Error = err.Error()
		} else {
			summary.Version = hdr.Version
			summary.Architecture = hdr.Architecture()
		}
		models = append(models, summary)
	}
	return c.JSON(http.StatusOK, ModelListResponse{Models: models})
}

func (s *Server) handleGetModel(c *echo.Context) error {
	name := c.Param("name")
	hdr, hdrSize, err := s.catalog.Header(name)
	if err != nil {
		return s.writeHeaderError(c, name, err)
	}

	resp := HeaderResponse{
		Name:          name,
		Version:       hdr.Version,
		TensorCount:   hdr.TensorCount,
		MetadataCount: len(hdr.Metadata),
		HeaderSize:    hdrSize,
		Architecture:  hdr.Architecture(),
		ModelName:     hdr.Name(),
		ContextLength: hdr.ContextLength(),
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetMetadata(c *echo.Context) error {
	name := c.Param("name")
	hdr, _, err := s.catalog.Header(name)
	if err != nil {
		return s.writeHeaderError(c, name, err)
	}

	full := c.QueryParam("full") == "1"
	resp := MetadataResponse{
		Name:     name,
		Metadata: metadataDTO(hdr, full),
	}
	// Metadata bodies can be large (vocabularies, merge tables) when full=1,
	// so they go through goccy rather than the stdlib encoder.
	body, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encode metadata", "model", name, "error", err)
		return writeServerError(c, err.Error())
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

func (s *Server) handleGetMetadataKey(c *echo.Context) error {
	name := c.Param("name")
	hdr, _, err := s.catalog.Header(name)
	if err != nil {
		return s.writeHeaderError(c, name, err)
	}

	key := c.Param("key")
	v, ok := hdr.Get(key)
	if !ok {
		return writeNotFound(c, "metadata key not found: "+key)
	}
	return c.JSON(http.StatusOK, MetadataEntryDTO{
		Key:   key,
		Type:  v.Type.String(),
		Value: valueJSON(v, true),
	})
}

func (s *Server) writeHeaderError(c *echo.Context, name string, err error) error {
	switch {
	case errors.Is(err, ErrModelNotFound):
		return writeNotFound(c, "model not found: "+name)
	case isDecodeError(err):
		s.log.Warn("undecodable model", "model", name, "error", err)
		return writeError(c, http.StatusUnprocessableEntity, "invalid_model_error", err.Error())
	default:
		s.log.Error("read model header", "model", name, "error", err)
		return writeServerError(c, err.Error())
	}
}

// isDecodeError reports whether err came from header decoding, as opposed to
// the filesystem. Decode failures are the client's problem (the file is not
// valid), so they map to 422 rather than 500.
func isDecodeError(err error) bool {
	var tagErr *gguf.UnknownTypeTagError
	var boolErr *gguf.InvalidBoolError
	return errors.Is(err, gguf.ErrUnexpectedEOF) ||
		errors.Is(err, gguf.ErrBadMagic) ||
		errors.Is(err, gguf.ErrInvalidUTF8) ||
		errors.Is(err, gguf.ErrNestingTooDeep) ||
		errors.As(err, &tagErr) ||
		errors.As(err, &boolErr)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeServerError(c *echo.Context, msg string) error {
	return writeError(c, http.StatusInternalServerError, "server_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
		},
	})
}
