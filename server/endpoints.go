package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/thingtalk/internal/version"
	"github.com/dekarrin/thingtalk/nnsyntax"
	"github.com/dekarrin/thingtalk/server/dao"
	"github.com/dekarrin/thingtalk/syntax"
)

// EndpointFunc is the signature of endpoint logic: it takes the request
// and produces a typed result that the wrapper writes out.
type EndpointFunc func(req *http.Request) EndpointResult

// Endpoint wraps endpoint logic into an http.HandlerFunc with panic
// recovery.
func Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		result := ep(req)
		result.writeResponse(w, req)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		jsonInternalServerError("panic: %v", panicErr).writeResponse(w, req)
	}
}

func parseJSON(req *http.Request, v any) error {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	defer req.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON in request: %w", err)
	}
	return nil
}

// ParseRequest is the body of POST /nn/parse.
type ParseRequest struct {
	Sequence string         `json:"sequence"`
	Entities map[string]any `json:"entities"`
}

// ParseResponse is the reply of POST /nn/parse.
type ParseResponse struct {
	ThingTalk string `json:"thingtalk"`
}

// SerializeRequest is the body of POST /nn/serialize.
type SerializeRequest struct {
	Sequence string         `json:"sequence"`
	Entities map[string]any `json:"entities"`

	TypeAnnotations bool `json:"type_annotations"`
	ExplicitStrings bool `json:"explicit_strings"`

	// TargetVersion, when set, rewrites the output for an older client.
	TargetVersion string `json:"target_version,omitempty"`
}

// SerializeResponse is the reply of POST /nn/serialize.
type SerializeResponse struct {
	Sequence string             `json:"sequence"`
	Entities nnsyntax.EntityMap `json:"entities"`
}

// InfoResponse is the reply of GET /info.
type InfoResponse struct {
	Version string `json:"version"`
}

// ExampleModel is the API shape of a stored example.
type ExampleModel struct {
	ID        string `json:"id"`
	Sentence  string `json:"sentence"`
	Sequence  string `json:"sequence"`
	Entities  string `json:"entities"`
	ThingTalk string `json:"thingtalk"`
	Created   string `json:"created"`
}

func toModel(ex dao.Example) ExampleModel {
	return ExampleModel{
		ID:        ex.ID.String(),
		Sentence:  ex.Sentence,
		Sequence:  ex.Sequence,
		Entities:  ex.Entities,
		ThingTalk: ex.ThingTalk,
		Created:   ex.Created.Format("2006-01-02T15:04:05Z"),
	}
}

func (s *Server) epParse(req *http.Request) EndpointResult {
	var body ParseRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "%s", err.Error())
	}
	if body.Sequence == "" {
		return jsonBadRequest("sequence: property is empty or missing from request", "empty sequence")
	}

	pretty, err := parseToThingTalk(body.Sequence, body.Entities)
	if err != nil {
		return jsonBadRequest(err.Error(), "parse: %s", err.Error())
	}
	return jsonOK(ParseResponse{ThingTalk: pretty}, "parsed %d tokens", len(strings.Fields(body.Sequence)))
}

func (s *Server) epSerialize(req *http.Request) EndpointResult {
	var body SerializeRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "%s", err.Error())
	}
	if body.Sequence == "" {
		return jsonBadRequest("sequence: property is empty or missing from request", "empty sequence")
	}

	ast, err := nnsyntax.FromNN(body.Sequence, body.Entities)
	if err != nil {
		return jsonBadRequest(err.Error(), "parse: %s", err.Error())
	}

	allocated := nnsyntax.EntityMap{}
	seq, err := nnsyntax.ToNN(ast, nil, allocated, nnsyntax.SerializeOptions{
		AllocateEntities: true,
		TypeAnnotations:  body.TypeAnnotations,
		ExplicitStrings:  body.ExplicitStrings,
	})
	if err != nil {
		return jsonBadRequest(err.Error(), "serialize: %s", err.Error())
	}

	if body.TargetVersion != "" {
		seq, err = nnsyntax.ApplyCompatibility(seq, allocated, body.TargetVersion)
		if err != nil {
			return jsonBadRequest(err.Error(), "compatibility: %s", err.Error())
		}
	}

	return jsonOK(SerializeResponse{
		Sequence: strings.Join(seq, " "),
		Entities: allocated,
	}, "serialized %d tokens", len(seq))
}

func (s *Server) epInfo(req *http.Request) EndpointResult {
	return jsonOK(InfoResponse{Version: version.Current}, "version info")
}

func (s *Server) epCreateExample(req *http.Request) EndpointResult {
	var body struct {
		Sentence string         `json:"sentence"`
		Sequence string         `json:"sequence"`
		Entities map[string]any `json:"entities"`
	}
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), "%s", err.Error())
	}
	if body.Sequence == "" {
		return jsonBadRequest("sequence: property is empty or missing from request", "empty sequence")
	}

	pretty, err := parseToThingTalk(body.Sequence, body.Entities)
	if err != nil {
		return jsonBadRequest(err.Error(), "parse: %s", err.Error())
	}

	entitiesJSON, err := json.Marshal(body.Entities)
	if err != nil {
		return jsonBadRequest(err.Error(), "marshal entities: %s", err.Error())
	}

	ex, err := s.db.CreateExample(req.Context(), dao.Example{
		Sentence:  body.Sentence,
		Sequence:  body.Sequence,
		Entities:  string(entitiesJSON),
		ThingTalk: pretty,
	})
	if err != nil {
		return jsonInternalServerError("create example: %s", err.Error())
	}
	return jsonCreated(toModel(ex), "created example %s", ex.ID)
}

func (s *Server) epListExamples(req *http.Request) EndpointResult {
	examples, err := s.db.ListExamples(req.Context())
	if err != nil {
		return jsonInternalServerError("list examples: %s", err.Error())
	}

	models := make([]ExampleModel, len(examples))
	for i := range examples {
		models[i] = toModel(examples[i])
	}
	return jsonOK(models, "listed %d examples", len(models))
}

func (s *Server) epGetExample(req *http.Request) EndpointResult {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		return jsonBadRequest("id: not a valid example ID", "bad id: %s", err.Error())
	}

	ex, err := s.db.GetExample(req.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return jsonNotFound("example %s does not exist", id)
		}
		return jsonInternalServerError("get example: %s", err.Error())
	}
	return jsonOK(toModel(ex), "retrieved example %s", id)
}

// parseToThingTalk parses a sequence and renders the result in the
// ThingTalk surface syntax.
func parseToThingTalk(sequence string, entities map[string]any) (string, error) {
	ast, err := nnsyntax.FromNN(sequence, entities)
	if err != nil {
		return "", err
	}

	switch n := ast.(type) {
	case syntax.Program:
		return n.ThingTalk(), nil
	case syntax.PermissionRule:
		return n.ThingTalk(), nil
	case syntax.DialogueState:
		return n.ThingTalk(), nil
	case syntax.ControlCommand:
		return n.ThingTalk(), nil
	default:
		return "", fmt.Errorf("unexpected parse result %T", ast)
	}
}
