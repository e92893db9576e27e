package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleet-route-api/internal/features/carrier/domain"
	"fleet-route-api/internal/features/carrier/ports"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	opGetManifest = "get manifest"
	dateLayout    = "2006-01-02"

	// parcelArticles selects delivery articles; pickups and other "metier" kinds are skipped.
	parcelArticles = `LstLieuArticle.#(metier=="COLIS")#`
)

type manifestRequest struct {
	DateDebut string `json:"DateDebut"`
	Matricule string `json:"Matricule"`
}

// GetManifest retrieves the parcels of a driver's tour for a date.
func (a *ColisPriveAdapter) GetManifest(ctx context.Context, q ports.ManifestQuery, token domain.SessionToken) ([]domain.ManifestEntry, error) {
	date, err := a.resolveDate(q.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGetManifest, err)
	}

	payload, err := json.Marshal(manifestRequest{
		DateDebut: date,
		Matricule: domain.CompositeID(q.CompanyCode, q.DriverID),
	})
	if err != nil {
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrMalformedResponse, Err: err}
	}

	url := a.config.TourneeURL + "/WS-TourneeColis/api/getTourneeByMatriculeDistributeurDateDebut_POST"

	status, body, err := a.post(ctx, url, payload, token.Value)
	if err != nil {
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrNetwork, StatusCode: status, Err: err}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrUnauthorized, StatusCode: status}
	case status == http.StatusNotFound:
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrNotFound, StatusCode: status}
	case status < 200 || status > 299:
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrNetwork, StatusCode: status}
	}

	entries, err := parseManifest(body)
	if err != nil {
		return nil, &domain.FetchError{Op: opGetManifest, Kind: domain.ErrMalformedResponse, StatusCode: status, Err: err}
	}

	a.log.Info("Manifest retrieved",
		zap.String("matricule", domain.CompositeID(q.CompanyCode, q.DriverID)),
		zap.String("date", date),
		zap.Int("packages", len(entries)),
	)

	return entries, nil
}

// resolveDate validates an ISO date, defaulting to today.
func (a *ColisPriveAdapter) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return a.now().UTC().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}
	return date, nil
}

// parseManifest maps the carrier tour document to manifest entries.
func parseManifest(body []byte) ([]domain.ManifestEntry, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tour response is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("tour response is not an object")
	}

	articles := doc.Get(parcelArticles).Array()
	entries := make([]domain.ManifestEntry, 0, len(articles))
	seen := make(map[domain.PackageReference]struct{}, len(articles))

	for _, article := range articles {
		ref := domain.PackageReference(strings.TrimSpace(article.Get("refExterneArticle").String()))
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}

		status := article.Get("codeStatutArticle").String()
		if status == "" {
			status = "UNKNOWN"
		}

		entries = append(entries, domain.ManifestEntry{
			Reference:     ref,
			ArticleID:     article.Get("idArticle").String(),
			RecipientName: article.Get("nomDestinataire").String(),
			AddressLine1:  article.Get("LibelleVoieOrigineDestinataire").String(),
			AddressLine2:  article.Get("ComplementAdresse1OrigineDestinataire").String(),
			PostalCode:    article.Get("codePostalOrigineDestinataire").String(),
			City:          article.Get("LibelleLocaliteOrigineDestinataire").String(),
			Coordinates:   articleCoordinates(article),
			Status:        status,
			SequenceHint:  int(article.Get("numOrdrePassagePrevu").Int()),
			Priority:      int(article.Get("priorite").Int()),
			Phone:         article.Get("telephoneMobileDestinataire").String(),
			Instructions:  article.Get("PreferenceLivraison").String(),
		})
	}

	return entries, nil
}

// articleCoordinates prefers the recipient geocode and falls back to the delivery point.
// X is the longitude, Y the latitude.
func articleCoordinates(article gjson.Result) *domain.Coordinates {
	pairs := [][2]string{
		{"coordXDestinataire", "coordYDestinataire"},
		{"coordXLivraison", "coordYLivraison"},
	}
	for _, p := range pairs {
		c := domain.Coordinates{
			Longitude: article.Get(p[0]).Float(),
			Latitude:  article.Get(p[1]).Float(),
		}
		if c.Valid() {
			return &c
		}
	}
	return nil
}
