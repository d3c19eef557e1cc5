package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/IBM/cloudant-go-sdk/cloudantv1"
	"github.com/IBM/go-sdk-core/v5/core"

	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/internal/domain/model"
)

const driverCouchDB = "couchdb"

// CouchStore keeps each collection in a CouchDB or IBM Cloudant database.
// Documents come back with _id and _rev as assigned by the server.
type CouchStore struct {
	service *cloudantv1.CloudantV1
	client  *http.Client
}

// NewCouchStore builds a Cloudant client from cfg. An empty cfg.URL selects
// the Cloudant account named by cfg.Username. IAM auth, the default,
// exchanges cfg.APIKey for a bearer token at cfg.IAMURL (IBM Cloud when empty).
func NewCouchStore(cfg config.Store, opts ...Option) (*CouchStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := o.httpClient
	if client == nil {
		client = &http.Client{
			Timeout: o.timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}

	auth, err := couchAuthenticator(cfg, client)
	if err != nil {
		return nil, storeErr("couchdb auth", err)
	}

	serviceURL := cfg.URL
	if serviceURL == "" {
		serviceURL = "https://" + cfg.Username + ".cloudant.com"
	}
	svc, err := cloudantv1.NewCloudantV1(&cloudantv1.CloudantV1Options{
		URL:           strings.TrimRight(serviceURL, "/"),
		Authenticator: auth,
	})
	if err != nil {
		return nil, storeErr("couchdb client", err)
	}
	svc.Service.SetHTTPClient(client)

	return &CouchStore{service: svc, client: client}, nil
}

func couchAuthenticator(cfg config.Store, client *http.Client) (core.Authenticator, error) {
	switch cfg.Auth {
	case config.CouchAuthIAM, "":
		a := &core.IamAuthenticator{ApiKey: cfg.APIKey, URL: cfg.IAMURL, Client: client}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		return a, nil
	case config.CouchAuthBasic:
		return core.NewBasicAuthenticator(cfg.Username, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth)
	}
}

// couchErr maps an SDK failure onto the store sentinels.
func couchErr(resp *core.DetailedResponse, err error) error {
	if resp == nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownCollection
	}
	return fmt.Errorf("couchdb: http %d: %w", resp.StatusCode, err)
}

// EnsureCollection implements Store. An existing database is not an error.
func (s *CouchStore) EnsureCollection(ctx context.Context, name string) (err error) {
	defer observe(driverCouchDB, "ensure_collection", time.Now(), &err)

	_, resp, err := s.service.PutDatabaseWithContext(ctx, s.service.NewPutDatabaseOptions(name))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusPreconditionFailed {
			return nil
		}
		return storeErr("ensure collection "+name, couchErr(resp, err))
	}
	return nil
}

// Create implements Store.
func (s *CouchStore) Create(ctx context.Context, collection string, doc model.Document) (_ model.Document, err error) {
	defer observe(driverCouchDB, "create", time.Now(), &err)

	op := "create in " + collection
	id, err := newID()
	if err != nil {
		return nil, err
	}
	stored := withID(doc, id)

	body := &cloudantv1.Document{ID: core.StringPtr(id)}
	for k, v := range stored {
		if k != model.IDField {
			body.SetProperty(k, v)
		}
	}
	req := s.service.NewPostDocumentOptions(collection)
	req.SetDocument(body)

	res, resp, err := s.service.PostDocumentWithContext(ctx, req)
	if err != nil {
		return nil, storeErr(op, couchErr(resp, err))
	}
	if res.ID != nil {
		stored[model.IDField] = *res.ID
	}
	if res.Rev != nil {
		stored["_rev"] = *res.Rev
	}
	return stored, nil
}

// List implements Store. Design documents are skipped; rows arrive in _id
// order, which is creation order for store-assigned ids.
func (s *CouchStore) List(ctx context.Context, collection string) (_ []model.Document, err error) {
	defer observe(driverCouchDB, "list", time.Now(), &err)

	op := "list " + collection
	req := s.service.NewPostAllDocsOptions(collection)
	req.SetIncludeDocs(true)

	res, resp, err := s.service.PostAllDocsWithContext(ctx, req)
	if err != nil {
		return nil, storeErr(op, couchErr(resp, err))
	}

	docs := make([]model.Document, 0, len(res.Rows))
	for _, row := range res.Rows {
		if row.ID == nil || strings.HasPrefix(*row.ID, "_design/") || row.Doc == nil {
			continue
		}
		raw, err := json.Marshal(row.Doc)
		if err != nil {
			return nil, storeErr(op, err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, storeErr(op, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close implements Store.
func (s *CouchStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
