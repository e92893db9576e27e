package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"fleet-route-api/internal/features/carrier/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// detailResponse is the envelope returned by the detail endpoint.
type detailResponse struct {
	Success bool        `json:"success"`
	Data    *detailData `json:"data"`
	Message string      `json:"message"`
}

type detailData struct {
	RefColis              string            `json:"ref_colis"`
	CodeBarreComplet      string            `json:"code_barre_complet"`
	AdresseComplete       string            `json:"adresse_complete"`
	CodePostal            string            `json:"code_postal"`
	Ville                 string            `json:"ville"`
	Pays                  string            `json:"pays"`
	Coordonnees           *coordonnees      `json:"coordonnees"`
	DonneesPhysiques      *donneesPhysiques `json:"donnees_physiques"`
	Historique            []historiqueItem  `json:"historique"`
	Commentaires          string            `json:"commentaires"`
	InstructionsLivraison string            `json:"instructions_livraison"`
	HorairesLivraison     *horaires         `json:"horaires_livraison"`
	Contact               *contact          `json:"contact"`
}

type coordonnees struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type donneesPhysiques struct {
	Poids      *float64    `json:"poids"`
	UnitePoids string      `json:"unite_poids"`
	Dimensions *dimensions `json:"dimensions"`
	Valeur     *float64    `json:"valeur"`
	Devise     string      `json:"devise"`
}

type dimensions struct {
	Longueur *float64 `json:"longueur"`
	Largeur  *float64 `json:"largeur"`
	Hauteur  *float64 `json:"hauteur"`
	Unite    string   `json:"unite"`
}

type historiqueItem struct {
	Date        string `json:"date"`
	Heure       string `json:"heure"`
	Statut      string `json:"statut"`
	Description string `json:"description"`
	Lieu        string `json:"lieu"`
}

type horaires struct {
	Debut        string   `json:"debut"`
	Fin          string   `json:"fin"`
	JoursSemaine []string `json:"jours_semaine"`
}

type contact struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
}

// FetchDetails looks up every reference in batches of config.DetailBatchSize.
// Requests of one batch run concurrently; batches are separated by config.DetailBatchDelay.
// The result holds exactly one entry per distinct reference.
func (a *ColisPriveAdapter) FetchDetails(ctx context.Context, refs []domain.PackageReference, token domain.SessionToken) map[domain.PackageReference]domain.DetailResult {
	unique := dedupe(refs)
	results := make(map[domain.PackageReference]domain.DetailResult, len(unique))

	size := a.config.DetailBatchSize
	if size <= 0 {
		size = 1
	}

	start := time.Now()
	batches := 0

	for offset := 0; offset < len(unique); offset += size {
		if offset > 0 {
			if err := a.wait(ctx, a.config.DetailBatchDelay); err != nil {
				failRemaining(results, unique[offset:], err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			failRemaining(results, unique[offset:], err)
			break
		}

		end := min(offset+size, len(unique))
		batch := unique[offset:end]
		out := make([]domain.DetailResult, len(batch))

		var g errgroup.Group
		for i, ref := range batch {
			g.Go(func() error {
				out[i] = a.fetchDetail(ctx, ref, token)
				return nil
			})
		}
		_ = g.Wait()

		for i, ref := range batch {
			results[ref] = out[i]
		}
		batches++
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	a.log.Info("Package details fetched",
		zap.Int("packages", len(unique)),
		zap.Int("batches", batches),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)

	return results
}

// fetchDetail performs one lookup; every failure becomes a DetailResult failure.
func (a *ColisPriveAdapter) fetchDetail(ctx context.Context, ref domain.PackageReference, token domain.SessionToken) domain.DetailResult {
	if ref == "" {
		return domain.DetailFailure("empty reference")
	}

	endpoint := a.config.DetailURL + "/WS-TourneeColis/api/GetBeanSuiviColisByRefColisWithTracabilite/" + url.PathEscape(string(ref))

	status, body, err := a.post(ctx, endpoint, nil, token.Value)
	if err != nil {
		return domain.DetailFailure(fmt.Sprintf("network error: %v", err))
	}
	if status < 200 || status > 299 {
		return domain.DetailFailure(fmt.Sprintf("HTTP %d", status))
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.DetailFailure(fmt.Sprintf("decode error: %v", err))
	}
	if !resp.Success {
		if resp.Message == "" {
			return domain.DetailFailure("carrier reported failure")
		}
		return domain.DetailFailure(resp.Message)
	}
	if resp.Data == nil {
		return domain.DetailFailure("empty detail")
	}

	return domain.DetailSuccess(mapDetail(ref, resp.Data))
}

func mapDetail(ref domain.PackageReference, d *detailData) *domain.PackageDetail {
	detail := &domain.PackageDetail{
		Reference:    ref,
		Barcode:      d.CodeBarreComplet,
		FullAddress:  d.AdresseComplete,
		PostalCode:   d.CodePostal,
		City:         d.Ville,
		Country:      d.Pays,
		Instructions: d.InstructionsLivraison,
		Comments:     d.Commentaires,
	}

	if d.Coordonnees != nil {
		c := domain.Coordinates{Latitude: d.Coordonnees.Latitude, Longitude: d.Coordonnees.Longitude}
		if c.Valid() {
			detail.Coordinates = &c
		}
	}

	if p := d.DonneesPhysiques; p != nil {
		detail.Physical = &domain.PhysicalData{
			Weight:     p.Poids,
			WeightUnit: p.UnitePoids,
			Value:      p.Valeur,
			Currency:   p.Devise,
		}
		if dim := p.Dimensions; dim != nil {
			detail.Physical.Dimensions = &domain.Dimensions{
				Length: dim.Longueur,
				Width:  dim.Largeur,
				Height: dim.Hauteur,
				Unit:   dim.Unite,
			}
		}
	}

	if h := d.HorairesLivraison; h != nil {
		detail.DeliveryWindow = &domain.DeliveryWindow{Start: h.Debut, End: h.Fin, Days: h.JoursSemaine}
	}

	if c := d.Contact; c != nil {
		detail.Contact = &domain.Contact{
			LastName:  c.Nom,
			FirstName: c.Prenom,
			Phone:     c.Telephone,
			Email:     c.Email,
		}
	}

	for _, h := range d.Historique {
		detail.History = append(detail.History, domain.HistoryEvent{
			Date:        h.Date,
			Time:        h.Heure,
			Status:      h.Statut,
			Description: h.Description,
			Place:       h.Lieu,
		})
	}

	return detail
}

// dedupe drops repeated references, keeping first occurrence order.
func dedupe(refs []domain.PackageReference) []domain.PackageReference {
	seen := make(map[domain.PackageReference]struct{}, len(refs))
	out := make([]domain.PackageReference, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func failRemaining(results map[domain.PackageReference]domain.DetailResult, refs []domain.PackageReference, err error) {
	for _, ref := range refs {
		results[ref] = domain.DetailFailure(err.Error())
	}
}
