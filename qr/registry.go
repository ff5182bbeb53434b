// Package qr maps opaque tokens to the tenant and table they were issued
// for. It is the only way an anonymous request is attributed to a tenant.
package qr

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/tenant"
)

// errUnresolvable is shared by unknown and inactive tokens so callers cannot
// tell them apart.
const errUnresolvable = "QR code not found or inactive"

type Resolution struct {
	TenantID    primitive.ObjectID
	TableNumber string
	Token       string
}

type Scan struct {
	URL         string `json:"url"`
	TableNumber string `json:"tableNumber"`
}

type IssueInput struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=global table"`
	TableNumber string `json:"tableNumber"`
}

type Registry struct {
	codes       store.QRCodes
	renderer    Renderer
	frontendURL string
	log         *logger.Logger
	now         func() time.Time
	newToken    func() string
}

func NewRegistry(codes store.QRCodes, renderer Renderer, frontendURL string, log *logger.Logger) *Registry {
	return &Registry{
		codes:       codes,
		renderer:    renderer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
		now:         time.Now,
		newToken:    uuid.NewString,
	}
}

func (r *Registry) Resolve(ctx context.Context, token string) (*Resolution, error) {
	if token == "" {
		return nil, apperrors.NotFound(errUnresolvable)
	}
	qr, err := r.codes.FindActiveByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(errUnresolvable)
	}
	if err != nil {
		return nil, apperrors.Internal("Error resolving QR code", err)
	}
	return &Resolution{TenantID: qr.UserID, TableNumber: qr.TableNumber, Token: qr.Token}, nil
}

// RecordScan counts one scan with a single atomic update.
func (r *Registry) RecordScan(ctx context.Context, token string) (*Scan, error) {
	qr, err := r.codes.IncrementScan(ctx, token, r.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(errUnresolvable)
	}
	if err != nil {
		return nil, apperrors.Internal("Error tracking scan", err)
	}
	r.log.Debug(logger.RequestID(ctx), "qr_scanned", "scan recorded", "token", token, "scans", qr.Scans)
	return &Scan{URL: qr.URL, TableNumber: qr.TableNumber}, nil
}

func (r *Registry) Issue(ctx context.Context, principal *models.User, in IssueInput) (*models.QRCode, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	if err := helper.Validate(in); err != nil {
		return nil, err
	}
	in.TableNumber = strings.TrimSpace(in.TableNumber)
	if in.Type == models.QRTypeTable {
		if in.TableNumber == "" {
			return nil, apperrors.Validation("tableNumber is required for table QR codes")
		}
		exists, err := r.codes.ExistsActiveTable(ctx, tenantID, in.TableNumber)
		if err != nil {
			return nil, apperrors.Internal("Error checking table QR codes", err)
		}
		if exists {
			return nil, apperrors.Conflict("QR code for Table " + in.TableNumber + " already exists")
		}
	} else {
		in.TableNumber = ""
	}

	token := r.newToken()
	url := r.frontendURL + "/m/" + Slug(principal.RestaurantName) + "/q/" + token
	data, err := DataURL(r.renderer, url, DefaultStyle)
	if err != nil {
		return nil, apperrors.Internal("Error rendering QR code", err)
	}

	now := r.now()
	qr := &models.QRCode{
		UserID:      tenantID,
		Name:        in.Name,
		Type:        in.Type,
		TableNumber: in.TableNumber,
		Token:       token,
		QRCodeData:  data,
		URL:         url,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.codes.Create(ctx, qr); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("QR code for Table " + in.TableNumber + " already exists")
		}
		return nil, apperrors.Internal("Error saving QR code", err)
	}
	r.log.Info(logger.RequestID(ctx), "qr_issued", "QR code issued",
		"tenant_id", tenantID.Hex(), "type", qr.Type, "table", qr.TableNumber)
	return qr, nil
}

func (r *Registry) List(ctx context.Context, principal *models.User) ([]models.QRCode, error) {
	tenantID, err := tenant.EffectiveID(principal)
	if err != nil {
		return nil, err
	}
	codes, err := r.codes.ListByUser(ctx, tenantID, true)
	if err != nil {
		return nil, apperrors.Internal("Error listing QR codes", err)
	}
	return codes, nil
}

func (r *Registry) Get(ctx context.Context, principal *models.User, id string) (*models.QRCode, error) {
	oid, err := helper.ParseID(id, "QR Code")
	if err != nil {
		return nil, err
	}
	qr, err := r.codes.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("QR Code not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Error loading QR code", err)
	}
	if err := tenant.Owns(principal, qr.UserID); err != nil {
		return nil, err
	}
	return qr, nil
}

// Delete removes the code permanently.
func (r *Registry) Delete(ctx context.Context, principal *models.User, id string) error {
	qr, err := r.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := r.codes.Delete(ctx, qr.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal("Error deleting QR code", err)
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug is the menu path segment for a restaurant name.
func Slug(restaurantName string) string {
	name := strings.TrimSpace(restaurantName)
	if name == "" {
		return "menu"
	}
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

// Unslug reverses Slug well enough for a case-insensitive name lookup.
func Unslug(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}
