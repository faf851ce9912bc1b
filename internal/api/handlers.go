package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/chat"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/recommendations"
	"github.com/virshi/ai-visibility/internal/reports"
	"github.com/virshi/ai-visibility/internal/scans"
	"github.com/virshi/ai-visibility/internal/visibility"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

// projectData is everything the visibility math needs for one project:
// joined mention rows, the snapshot set, classified sources and the keyword
// list.
type projectData struct {
	project    *models.Project
	keywords   []models.Keyword
	assets     []models.OfficialAsset
	scans      []models.ScanResult
	rows       []visibility.Row
	snapshot   map[string]struct{}
	sources    []models.ExtractedSource
	classifier *visibility.Classifier
}

func (s *Server) loadProjectData(r *http.Request, projectID string) (*projectData, error) {
	ctx := r.Context()

	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	keywords, err := s.store.KeywordsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assets, err := s.store.OfficialAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	scanRows, err := s.store.ScansByProject(ctx, projectID, scanHistoryLimit)
	if err != nil {
		return nil, err
	}

	scanIDs := make([]string, 0, len(scanRows))
	for _, sc := range scanRows {
		scanIDs = append(scanIDs, sc.ID)
	}
	mentions, err := s.store.MentionsByScanIDs(ctx, scanIDs)
	if err != nil {
		return nil, err
	}
	sources, err := s.store.SourcesByScanIDs(ctx, scanIDs)
	if err != nil {
		return nil, err
	}

	classifier := visibility.NewClassifierFromAssets(assets)
	return &projectData{
		project:    project,
		keywords:   keywords,
		assets:     assets,
		scans:      scanRows,
		rows:       visibility.Join(scanRows, mentions, project.BrandName),
		snapshot:   visibility.LatestScanIDs(scanRows),
		sources:    classifier.Classify(sources),
		classifier: classifier,
	}, nil
}

type keywordLine struct {
	Keyword string `json:"keyword"`
	visibility.KeywordStats
}

type dashboardResponse struct {
	ProjectID string                      `json:"project_id"`
	BrandName string                      `json:"brand_name"`
	Providers []visibility.ProviderStats  `json:"providers"`
	Keywords  []keywordLine               `json:"keywords"`
	Trend     []visibility.TrendPoint     `json:"trend"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	data, err := s.loadProjectData(r, projectID)
	if err != nil {
		logrus.Errorf("Dashboard load failed for project %s: %v", projectID, err)
		writeError(w, http.StatusBadGateway, "failed to load project data")
		return
	}

	resp := dashboardResponse{
		ProjectID: projectID,
		BrandName: data.project.BrandName,
		Trend:     visibility.TrendSeries(data.rows),
	}
	for _, p := range visibility.Providers {
		resp.Providers = append(resp.Providers, visibility.Overview(data.rows, p, data.snapshot))
	}
	for _, kw := range data.keywords {
		resp.Keywords = append(resp.Keywords, keywordLine{
			Keyword:      kw.KeywordText,
			KeywordStats: visibility.KeywordOverview(data.rows, kw.ID, data.sources, data.classifier),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type scanLine struct {
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	visibility.ScanStats
}

func (s *Server) handleKeywordDetail(w http.ResponseWriter, r *http.Request) {
	keywordID := mux.Vars(r)["id"]
	ctx := r.Context()

	keyword, err := s.store.KeywordByID(ctx, keywordID)
	if err != nil {
		writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	project, err := s.store.ProjectByID(ctx, keyword.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load project")
		return
	}

	scanRows, err := s.store.ScansByKeyword(ctx, keywordID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load scans")
		return
	}
	scanIDs := make([]string, 0, len(scanRows))
	for _, sc := range scanRows {
		scanIDs = append(scanIDs, sc.ID)
	}
	mentions, err := s.store.MentionsByScanIDs(ctx, scanIDs)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load mentions")
		return
	}

	rows := visibility.Join(scanRows, mentions, project.BrandName)

	resp := struct {
		Keyword string                  `json:"keyword"`
		Scans   []scanLine              `json:"scans"`
		Trend   []visibility.TrendPoint `json:"trend"`
	}{
		Keyword: keyword.KeywordText,
		Trend:   visibility.TrendSeries(rows),
	}
	for _, sc := range scanRows {
		resp.Scans = append(resp.Scans, scanLine{
			Provider:  visibility.NormalizeProvider(sc.Provider),
			CreatedAt: sc.CreatedAt,
			ScanStats: visibility.ScanOverview(rows, sc.ID),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	data, err := s.loadProjectData(r, projectID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load project data")
		return
	}

	type sourceLine struct {
		URL      string `json:"url"`
		Domain   string `json:"domain"`
		Official bool   `json:"official"`
	}

	type providerLine struct {
		Provider string `json:"provider"`
		Official int    `json:"official"`
		External int    `json:"external"`
	}

	type domainLine struct {
		Domain    string         `json:"domain"`
		Official  bool           `json:"official"`
		AssetType string         `json:"asset_type,omitempty"`
		Total     int            `json:"total"`
		Providers map[string]int `json:"providers"`
		FirstSeen time.Time      `json:"first_seen"`
	}

	scanProvider := make(map[string]string, len(data.scans))
	scanCreated := make(map[string]time.Time, len(data.scans))
	for _, sc := range data.scans {
		scanProvider[sc.ID] = visibility.NormalizeProvider(sc.Provider)
		scanCreated[sc.ID] = sc.CreatedAt
	}

	// Asset types keyed by the whitelisted domain or URL fragment, so a
	// ranked domain can show which kind of asset matched it.
	assetType := make(map[string]string, len(data.assets))
	for _, a := range data.assets {
		assetType[visibility.DomainOf(a.DomainOrURL)] = a.Type
	}

	resp := struct {
		Sources   []sourceLine   `json:"sources"`
		Total     int            `json:"total"`
		Official  int            `json:"official"`
		Providers []providerLine `json:"providers"`
		Domains   []domainLine   `json:"domains"`
	}{}

	perProvider := make(map[string]*providerLine, len(visibility.Providers))
	for _, p := range visibility.Providers {
		line := &providerLine{Provider: p}
		perProvider[p] = line
	}
	domains := make(map[string]*domainLine)

	for _, src := range data.sources {
		provider := scanProvider[src.ScanResultID]

		// The domain ranking and provider split cover the full scan
		// history; the flat list below sticks to the latest snapshot.
		if pl, ok := perProvider[provider]; ok {
			if src.IsOfficial {
				pl.Official++
			} else {
				pl.External++
			}
		}

		dl := domains[src.Domain]
		if dl == nil {
			dl = &domainLine{
				Domain:    src.Domain,
				AssetType: assetType[src.Domain],
				Providers: make(map[string]int),
				FirstSeen: scanCreated[src.ScanResultID],
			}
			domains[src.Domain] = dl
		}
		dl.Total++
		if provider != "" {
			dl.Providers[provider]++
		}
		if src.IsOfficial {
			dl.Official = true
		}
		if seen := scanCreated[src.ScanResultID]; !seen.IsZero() && seen.Before(dl.FirstSeen) {
			dl.FirstSeen = seen
		}

		if _, ok := data.snapshot[src.ScanResultID]; !ok {
			continue
		}
		resp.Sources = append(resp.Sources, sourceLine{URL: src.URL, Domain: src.Domain, Official: src.IsOfficial})
		resp.Total++
		if src.IsOfficial {
			resp.Official++
		}
	}

	for _, p := range visibility.Providers {
		resp.Providers = append(resp.Providers, *perProvider[p])
	}
	for _, dl := range domains {
		resp.Domains = append(resp.Domains, *dl)
	}
	sort.Slice(resp.Domains, func(i, j int) bool {
		if resp.Domains[i].Total != resp.Domains[j].Total {
			return resp.Domains[i].Total > resp.Domains[j].Total
		}
		return resp.Domains[i].Domain < resp.Domains[j].Domain
	})

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	data, err := s.loadProjectData(r, projectID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load project data")
		return
	}

	top := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v > 0 {
		top = v
	}
	key := visibility.ByMentions
	if r.URL.Query().Get("by") == "rank" {
		key = visibility.ByRank
	}

	// The competitive landscape table spans the whole scan history, not
	// just the latest snapshot: a brand that dominated earlier scans stays
	// visible even after a newer scan stops mentioning it.
	rows := data.rows
	if q := r.URL.Query().Get("provider"); q != "" {
		provider := visibility.NormalizeProvider(q)
		filtered := make([]visibility.Row, 0, len(rows))
		for _, row := range rows {
			if row.Provider == provider {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	stats := visibility.AggregateBrands(rows, data.project.BrandName)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"brands": visibility.TopN(stats, top, key),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	ctx := r.Context()

	data, err := s.loadProjectData(r, projectID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load project data")
		return
	}

	keywordText := make(map[string]string, len(data.keywords))
	for _, kw := range data.keywords {
		keywordText[kw.ID] = kw.KeywordText
	}

	// Per-scan rollups: brands found, my-brand mention sum, citation counts.
	type counts struct {
		brands        int
		myMentions    int
		links         int
		officialLinks int
	}
	perScan := make(map[string]*counts, len(data.scans))
	scanCounts := func(id string) *counts {
		c := perScan[id]
		if c == nil {
			c = &counts{}
			perScan[id] = c
		}
		return c
	}
	for _, row := range data.rows {
		c := scanCounts(row.ScanID)
		c.brands++
		if row.IsTarget {
			c.myMentions += row.Count
		}
	}
	for _, src := range data.sources {
		c := scanCounts(src.ScanResultID)
		c.links++
		if src.IsOfficial {
			c.officialLinks++
		}
	}

	// Resolve initiator emails to display names in one batched read.
	emailSet := make(map[string]struct{})
	for _, sc := range data.scans {
		if sc.UserEmail != "" {
			emailSet[sc.UserEmail] = struct{}{}
		}
	}
	emails := make([]string, 0, len(emailSet))
	for e := range emailSet {
		emails = append(emails, e)
	}

	names := make(map[string]string, len(emails))
	if len(emails) > 0 {
		profiles, err := s.store.ProfilesByEmails(ctx, emails)
		if err != nil {
			logrus.Warnf("Initiator resolution failed: %v", err)
		} else {
			for _, p := range profiles {
				name := p.FirstName
				if p.LastName != "" {
					name += " " + p.LastName
				}
				if name != "" {
					names[p.Email] = name
				}
			}
		}
	}

	type historyLine struct {
		ScanID        string    `json:"scan_id"`
		Keyword       string    `json:"keyword"`
		Provider      string    `json:"provider"`
		CreatedAt     time.Time `json:"created_at"`
		Initiator     string    `json:"initiator"`
		Automated     bool      `json:"automated"`
		BrandsFound   int       `json:"brands_found"`
		MyMentions    int       `json:"my_mentions"`
		Links         int       `json:"links"`
		OfficialLinks int       `json:"official_links"`
	}

	lines := make([]historyLine, 0, len(data.scans))
	for _, sc := range data.scans {
		line := historyLine{
			ScanID:    sc.ID,
			Keyword:   keywordText[sc.KeywordID],
			Provider:  visibility.NormalizeProvider(sc.Provider),
			CreatedAt: sc.CreatedAt,
			Automated: sc.UserEmail == "",
		}
		if c := perScan[sc.ID]; c != nil {
			line.BrandsFound = c.brands
			line.MyMentions = c.myMentions
			line.Links = c.links
			line.OfficialLinks = c.officialLinks
		}
		if line.Automated {
			line.Initiator = "Automation"
		} else if name, ok := names[sc.UserEmail]; ok {
			line.Initiator = name
		} else {
			line.Initiator = sc.UserEmail
		}
		lines = append(lines, line)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"scans": lines})
}

func (s *Server) handleTriggerScans(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var body struct {
		KeywordIDs []string `json:"keyword_ids"`
		Providers  []string `json:"providers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Providers) == 0 {
		body.Providers = s.config.Providers
	}

	userEmail := ""
	if profile := profileFrom(r); profile != nil {
		userEmail = profile.Email
	}

	result, err := s.scans.Trigger(r.Context(), projectID, body.KeywordIDs, body.Providers, userEmail)
	switch {
	case errors.Is(err, scans.ErrProjectBlocked):
		writeError(w, http.StatusConflict, "project is blocked")
		return
	case errors.Is(err, scans.ErrNoKeywords):
		writeError(w, http.StatusUnprocessableEntity, "no keywords to scan")
		return
	case err != nil:
		logrus.Errorf("Scan trigger failed for project %s: %v", projectID, err)
		writeError(w, http.StatusBadGateway, "scan trigger failed")
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.KeywordsByProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load keywords")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"keywords": keywords})
}

func (s *Server) handleAddKeywords(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var body struct {
		Keywords   []string `json:"keywords"`
		Frequency  string   `json:"frequency"`
		IsAutoScan bool     `json:"is_auto_scan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Keywords) == 0 {
		writeError(w, http.StatusBadRequest, "keywords are required")
		return
	}
	if body.Frequency == "" {
		body.Frequency = "weekly"
	}

	rows := make([]models.Keyword, 0, len(body.Keywords))
	for _, text := range body.Keywords {
		rows = append(rows, models.Keyword{
			ProjectID:   projectID,
			KeywordText: text,
			IsActive:    true,
			IsAutoScan:  body.IsAutoScan,
			Frequency:   body.Frequency,
		})
	}

	if err := s.store.InsertKeywords(r.Context(), rows); err != nil {
		writeError(w, http.StatusBadGateway, "failed to store keywords")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"added": len(rows)})
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteKeyword(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete keyword")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGeneratePrompts(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	project, err := s.store.ProjectByID(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load project")
		return
	}

	prompts, err := s.hooks.GeneratePrompts(r.Context(), webhooks.PromptRequest{
		Brand:    project.BrandName,
		Domain:   project.Domain,
		Industry: project.Industry,
		Products: project.Products,
	})
	if err != nil {
		logrus.Errorf("Prompt generation failed for project %s: %v", projectID, err)
		writeError(w, http.StatusBadGateway, "prompt generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"prompts": prompts})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	// Non-admins only ever see the published set.
	if profile := profileFrom(r); profile == nil || !isAdmin(profile.Role) {
		status = models.ReportPublished
	}

	list, err := s.reports.List(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load reports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": list})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReportName string `json:"report_name"`
	}
	// Body is optional; an empty name gets a default.
	_ = json.NewDecoder(r.Body).Decode(&body)

	report, err := s.reports.Generate(r.Context(), mux.Vars(r)["id"], body.ReportName)
	if err != nil {
		logrus.Errorf("Report generation failed: %v", err)
		writeError(w, http.StatusBadGateway, "report generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handlePublishReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.reports.Publish(r.Context(), vars["id"], vars["reportId"]); err != nil {
		writeError(w, http.StatusBadGateway, "failed to publish report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.ReportPublished})
}

func (s *Server) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HTMLContent string `json:"html_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.HTMLContent == "" {
		writeError(w, http.StatusBadRequest, "html_content is required")
		return
	}

	if err := s.reports.UpdateContent(r.Context(), mux.Vars(r)["id"], body.HTMLContent); err != nil {
		writeError(w, http.StatusBadGateway, "failed to update report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.store.OfficialAssets(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load official assets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var body struct {
		DomainOrURL string `json:"domain_or_url"`
		Type        string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DomainOrURL == "" {
		writeError(w, http.StatusBadRequest, "domain_or_url is required")
		return
	}
	if body.Type == "" {
		body.Type = "website"
	}

	asset := models.OfficialAsset{
		ProjectID:   projectID,
		DomainOrURL: body.DomainOrURL,
		Type:        body.Type,
	}
	if err := s.store.InsertOfficialAsset(r.Context(), asset); err != nil {
		writeError(w, http.StatusBadGateway, "failed to store official asset")
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOfficialAsset(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete official asset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleArchivedReports(w http.ResponseWriter, r *http.Request) {
	names, err := s.reports.ArchivedList(mux.Vars(r)["id"])
	switch {
	case errors.Is(err, reports.ErrArchiveDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "failed to list archived reports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"archived": names})
}

func (s *Server) handleArchivedReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["id"] + "/" + vars["name"]

	html, err := s.reports.ArchivedReport(name)
	switch {
	case errors.Is(err, reports.ErrArchiveDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusNotFound, "archived report not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

func (s *Server) handleDeleteArchivedReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["id"] + "/" + vars["name"]

	err := s.reports.DeleteArchived(name)
	switch {
	case errors.Is(err, reports.ErrArchiveDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "failed to delete archived report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteScan(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete scan")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": recommendations.Categories})
}

func (s *Server) handleOrderRecommendation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.recommendations.Order(r.Context(), mux.Vars(r)["id"], body.Category, profileFrom(r))
	switch {
	case errors.Is(err, recommendations.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, recommendations.ErrProjectBlocked):
		writeError(w, http.StatusConflict, "project is blocked")
		return
	case err != nil:
		logrus.Errorf("Recommendation order failed: %v", err)
		writeError(w, http.StatusBadGateway, "recommendation generation failed")
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.recommendations.History(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load recommendations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": list})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.chat.Ask(r.Context(), mux.Vars(r)["id"], body.Query, profileFrom(r))
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		logrus.Errorf("Chat request failed: %v", err)
		writeError(w, http.StatusBadGateway, "assistant is unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
