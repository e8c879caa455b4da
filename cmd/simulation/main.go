package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fantaleague-api/internal/auth"
	"github.com/ksred/fantaleague-api/internal/database"
	"github.com/ksred/fantaleague-api/internal/notify"
	"github.com/ksred/fantaleague-api/internal/phase"
	"github.com/ksred/fantaleague-api/internal/roster"
	"github.com/ksred/fantaleague-api/internal/trade"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/ksred/fantaleague-api/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	minTrades     = 10
	maxTrades     = 60
	numWorkers    = 4
	teamsPerGroup = 4
	playersEach   = 20
	serverAddress = "http://localhost:8080"
	jwtSecret     = "simulation-secret"
	adminName     = "admin"
	adminPassword = "admin"
	teamPassword  = "password123"
)

var (
	divisions = []string{"A", "B"}
	realTeams = []string{"Milan", "Inter", "Juventus", "Napoli", "Roma", "Lazio", "Atalanta", "Fiorentina"}
	lastNames = []string{
		"Rossi", "Bianchi", "Ferrari", "Russo", "Esposito", "Colombo", "Ricci", "Marino",
		"Greco", "Bruno", "Gallo", "Conti", "Mancini", "Costa", "Giordano", "Rizzo",
		"Lombardi", "Moretti", "Barbieri", "Fontana", "Santoro", "Mariani", "Rinaldi", "Caruso",
	}
	roleMix = []string{
		types.RoleGoalkeeper, types.RoleGoalkeeper,
		types.RoleDefender, types.RoleDefender, types.RoleDefender, types.RoleDefender,
		types.RoleDefender, types.RoleDefender, types.RoleDefender,
		types.RoleMidfielder, types.RoleMidfielder, types.RoleMidfielder, types.RoleMidfielder,
		types.RoleMidfielder, types.RoleMidfielder, types.RoleMidfielder,
		types.RoleForward, types.RoleForward, types.RoleForward, types.RoleForward,
	}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	mu         sync.Mutex
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

func (rs *routeStats) addFailure() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.failures++
}

// calculate computes performance statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))
	median = rs.durations[len(rs.durations)/2]

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the league API.
// It holds a token per seeded team plus the administrator token.
type simulationClient struct {
	baseURL    string
	client     *http.Client
	teamTokens map[string]string
	adminToken string
	stats      map[string]*routeStats
}

// newSimulationClient logs every seeded team and the administrator in
// and prepares performance tracking
func newSimulationClient(teamNames map[string]string) (*simulationClient, error) {
	sc := &simulationClient{
		baseURL:    serverAddress,
		client:     &http.Client{Timeout: 10 * time.Second},
		teamTokens: make(map[string]string),
		stats: map[string]*routeStats{
			"login":   {name: "Login"},
			"roster":  {name: "Fetch Roster"},
			"propose": {name: "Propose Trade"},
			"respond": {name: "Respond To Trade"},
			"decide":  {name: "Admin Decision"},
		},
	}

	for teamID, name := range teamNames {
		token, err := sc.login("/api/v1/auth/login", name, teamPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to log in team %s: %w", name, err)
		}
		sc.teamTokens[teamID] = token
	}

	adminToken, err := sc.login("/api/v1/auth/admin/login", adminName, adminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to log in administrator: %w", err)
	}
	sc.adminToken = adminToken

	return sc, nil
}

// login performs authentication against the given endpoint and returns a JWT
func (sc *simulationClient) login(path, name, password string) (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["login"].addDuration(time.Since(start))
	}()

	body, err := json.Marshal(map[string]string{"name": name, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(sc.baseURL+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		sc.stats["login"].addFailure()
		return "", fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Data.Token == "" {
		return "", fmt.Errorf("no token in login response")
	}

	return result.Data.Token, nil
}

// doJSON performs an authenticated request and decodes the standard envelope
func (sc *simulationClient) doJSON(method, path, token string, payload interface{}, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(body)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("path", path).Str("response", string(respBody)).Msg("API response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
		}
	}
	return nil
}

// fetchRoster retrieves a team's players grouped by role
func (sc *simulationClient) fetchRoster(token, teamID string, own bool) (map[string][]string, error) {
	start := time.Now()
	defer func() {
		sc.stats["roster"].addDuration(time.Since(start))
	}()

	path := "/api/v1/roster"
	var result struct {
		Data struct {
			Players []types.Player `json:"players"`
		} `json:"data"`
	}

	if own {
		if err := sc.doJSON("GET", path, token, nil, &result); err != nil {
			sc.stats["roster"].addFailure()
			return nil, err
		}
	} else {
		var listResult struct {
			Data []types.Player `json:"data"`
		}
		if err := sc.doJSON("GET", "/api/v1/roster/players?team_id="+teamID, token, nil, &listResult); err != nil {
			sc.stats["roster"].addFailure()
			return nil, err
		}
		result.Data.Players = listResult.Data
	}

	byRole := make(map[string][]string)
	for _, player := range result.Data.Players {
		byRole[player.Role] = append(byRole[player.Role], player.PlayerID)
	}
	return byRole, nil
}

// proposeTrade submits a role-balanced trade offer and returns the trade ID
func (sc *simulationClient) proposeTrade(token string, req trade.ProposeRequest) (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["propose"].addDuration(time.Since(start))
	}()

	var result struct {
		Data types.TradeResponse `json:"data"`
	}
	if err := sc.doJSON("POST", "/api/v1/trades", token, req, &result); err != nil {
		sc.stats["propose"].addFailure()
		return "", err
	}
	if result.Data.TradeID == "" {
		return "", fmt.Errorf("no trade ID in response")
	}
	return result.Data.TradeID, nil
}

// respondToTrade accepts or rejects a pending trade as the recipient
func (sc *simulationClient) respondToTrade(token, tradeID, action string) (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["respond"].addDuration(time.Since(start))
	}()

	var result struct {
		Data types.TradeResponse `json:"data"`
	}
	err := sc.doJSON("POST", fmt.Sprintf("/api/v1/trades/%s/respond", tradeID), token,
		map[string]string{"action": action}, &result)
	if err != nil {
		sc.stats["respond"].addFailure()
		return "", err
	}
	return result.Data.Status, nil
}

// adminDecide resolves an accepted trade as the league administrator
func (sc *simulationClient) adminDecide(tradeID, action string) (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["decide"].addDuration(time.Since(start))
	}()

	var result struct {
		Data types.TradeResponse `json:"data"`
	}
	err := sc.doJSON("POST", fmt.Sprintf("/api/v1/admin/trades/%s/decide", tradeID), sc.adminToken,
		map[string]string{"action": action}, &result)
	if err != nil {
		sc.stats["decide"].addFailure()
		return "", err
	}
	return result.Data.Status, nil
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\n📊 API Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range sc.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// tradeOutcome captures how one simulated trade cycle ended
type tradeOutcome struct {
	proposed      bool
	accepted      bool
	rejected      bool
	approved      bool
	adminRejected bool
	failed        bool
}

// main runs the league trade simulation
// It starts a local API server, seeds teams and players, then drives
// full trade lifecycles through the public API from concurrent workers
func main() {
	seed, err := startServer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	simClient, err := newSimulationClient(seed.teamNames)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}

	targetTrades := rand.Intn(maxTrades-minTrades) + minTrades
	log.Info().Int("target_trades", targetTrades).Msg("Starting simulation")

	outcomes := make(chan tradeOutcome, targetTrades)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runTradeCycles(workerID, targetTrades/numWorkers, simClient, seed.teamIDs, outcomes)
		}(i)
	}

	startTime := time.Now()
	wg.Wait()
	close(outcomes)

	var proposed, accepted, rejected, approved, adminRejected, failed int
	for outcome := range outcomes {
		if outcome.proposed {
			proposed++
		}
		if outcome.accepted {
			accepted++
		}
		if outcome.rejected {
			rejected++
		}
		if outcome.approved {
			approved++
		}
		if outcome.adminRejected {
			adminRejected++
		}
		if outcome.failed {
			failed++
		}
	}

	duration := time.Since(startTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("⚽ LEAGUE TRADE SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf(`
📊 Trade Statistics
------------------
Proposed:        %d
Accepted:        %d
Rejected:        %d
Approved:        %d
Admin Rejected:  %d
Failed Cycles:   %d
Duration:        %v
`, proposed, accepted, rejected, approved, adminRejected, failed, duration.Round(time.Millisecond))
	fmt.Println("\n" + strings.Repeat("=", 80))

	successRate := 0.0
	if proposed > 0 {
		successRate = float64(approved) / float64(proposed) * 100
	}
	log.Info().
		Float64("approval_rate", successRate).
		Int("proposed", proposed).
		Int("approved", approved).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// runTradeCycles drives full trade lifecycles between random team pairs.
// Runs as a worker goroutine, reporting each outcome on the channel.
func runTradeCycles(workerID, numTrades int, simClient *simulationClient, teamIDs []string, outcomes chan<- tradeOutcome) {
	for i := 0; i < numTrades; i++ {
		outcome := tradeOutcome{}

		fromTeamID := teamIDs[rand.Intn(len(teamIDs))]
		toTeamID := teamIDs[rand.Intn(len(teamIDs))]
		if fromTeamID == toTeamID {
			continue
		}

		fromToken := simClient.teamTokens[fromTeamID]
		toToken := simClient.teamTokens[toTeamID]

		fromRoster, err := simClient.fetchRoster(fromToken, fromTeamID, true)
		if err != nil {
			log.Error().Err(err).Int("worker_id", workerID).Msg("Failed to fetch proposer roster")
			outcome.failed = true
			outcomes <- outcome
			continue
		}
		toRoster, err := simClient.fetchRoster(fromToken, toTeamID, false)
		if err != nil {
			log.Error().Err(err).Int("worker_id", workerID).Msg("Failed to fetch recipient roster")
			outcome.failed = true
			outcomes <- outcome
			continue
		}

		req, ok := buildProposal(fromTeamID, toTeamID, fromRoster, toRoster)
		if !ok {
			continue
		}

		tradeID, err := simClient.proposeTrade(fromToken, req)
		if err != nil {
			log.Error().Err(err).Int("worker_id", workerID).Msg("Failed to propose trade")
			outcome.failed = true
			outcomes <- outcome
			continue
		}
		outcome.proposed = true
		log.Info().
			Int("worker_id", workerID).
			Str("trade_id", tradeID).
			Str("from_team_id", fromTeamID).
			Str("to_team_id", toTeamID).
			Int("players_per_side", len(req.PlayersFrom)).
			Int64("credits", req.Credits).
			Msg("Trade proposed")

		// Recipients accept most offers; the rest are rejected outright
		action := "accept"
		if rand.Intn(100) < 20 {
			action = "reject"
		}
		status, err := simClient.respondToTrade(toToken, tradeID, action)
		if err != nil {
			log.Error().Err(err).Str("trade_id", tradeID).Msg("Failed to respond to trade")
			outcome.failed = true
			outcomes <- outcome
			continue
		}
		if status == types.TradeStatusRejected {
			outcome.rejected = true
			outcomes <- outcome
			continue
		}
		outcome.accepted = true

		// The administrator approves most accepted trades
		decision := "approve"
		if rand.Intn(100) < 15 {
			decision = "reject"
		}
		status, err = simClient.adminDecide(tradeID, decision)
		if err != nil {
			log.Error().Err(err).Str("trade_id", tradeID).Msg("Failed to resolve trade")
			outcome.failed = true
			outcomes <- outcome
			continue
		}
		switch status {
		case types.TradeStatusApproved:
			outcome.approved = true
			log.Info().Str("trade_id", tradeID).Msg("Trade approved and applied")
		case types.TradeStatusRejected:
			outcome.adminRejected = true
			log.Info().Str("trade_id", tradeID).Msg("Trade rejected by administrator")
		}
		outcomes <- outcome

		time.Sleep(time.Duration(rand.Intn(300)) * time.Millisecond)
	}
}

// buildProposal picks a role both teams can cover and offers an equal
// number of players of that role from each side
func buildProposal(fromTeamID, toTeamID string, fromRoster, toRoster map[string][]string) (trade.ProposeRequest, bool) {
	roles := []string{types.RoleGoalkeeper, types.RoleDefender, types.RoleMidfielder, types.RoleForward}
	rand.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	for _, role := range roles {
		fromPlayers := fromRoster[role]
		toPlayers := toRoster[role]
		if len(fromPlayers) == 0 || len(toPlayers) == 0 {
			continue
		}

		count := 1
		if len(fromPlayers) > 1 && len(toPlayers) > 1 && rand.Intn(2) == 0 {
			count = 2
		}

		return trade.ProposeRequest{
			ToTeamID:    toTeamID,
			PlayersFrom: fromPlayers[:count],
			PlayersTo:   toPlayers[:count],
			Credits:     int64(rand.Intn(10)),
		}, true
	}
	return trade.ProposeRequest{}, false
}

// seedResult carries the identifiers of the seeded league
type seedResult struct {
	teamIDs   []string
	teamNames map[string]string
}

// startServer initializes the API server on an in-memory database,
// seeds the league and starts serving in a goroutine
func startServer() (*seedResult, error) {
	db, err := database.NewDatabase("file:simulation?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	seed, err := seedLeague(db)
	if err != nil {
		return nil, fmt.Errorf("failed to seed league: %w", err)
	}

	authService := auth.NewService(db, jwtSecret, adminName, adminPassword)
	phaseService := phase.NewService(db)
	rosterService := roster.NewService(db)
	tradeService := trade.NewService(db, rosterService.GetDB(), phaseService, notify.NewLogDispatcher())

	// Open the trade window for the duration of the run
	if _, err := phaseService.SetPhase(types.PhaseOpen, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to open trade phase: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	authHandlers := auth.NewGinHandlers(authService)
	phaseHandlers := phase.NewGinHandlers(phaseService)
	rosterHandlers := roster.NewGinHandlers(rosterService)
	tradeHandlers := trade.NewGinHandlers(tradeService)

	setupRoutes(router, jwtSecret, authHandlers, tradeHandlers, rosterHandlers, phaseHandlers)

	go func() {
		if err := router.Run(":8080"); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	return seed, nil
}

// seedLeague creates two divisions of teams with role-complete rosters.
// Player assignments are disjoint within a division so ownership checks
// hold from the first proposal.
func seedLeague(db *gorm.DB) (*seedResult, error) {
	hash, err := auth.HashPassword(teamPassword)
	if err != nil {
		return nil, err
	}

	seed := &seedResult{teamNames: make(map[string]string)}
	playerSeq := 0

	for _, division := range divisions {
		for t := 0; t < teamsPerGroup; t++ {
			team := types.Team{
				TeamID:       fmt.Sprintf("TEAM_%s%d", division, t+1),
				Name:         fmt.Sprintf("Squadra %s%d", division, t+1),
				Division:     division,
				Credits:      100,
				PasswordHash: hash,
			}
			if err := db.Create(&team).Error; err != nil {
				return nil, err
			}
			seed.teamIDs = append(seed.teamIDs, team.TeamID)
			seed.teamNames[team.TeamID] = team.Name

			for p := 0; p < playersEach; p++ {
				playerSeq++
				player := types.Player{
					PlayerID:   fmt.Sprintf("PLR_%04d", playerSeq),
					LastName:   fmt.Sprintf("%s %d", lastNames[playerSeq%len(lastNames)], playerSeq),
					RealTeam:   realTeams[playerSeq%len(realTeams)],
					Role:       roleMix[p],
					Value:      int64(rand.Intn(40) + 1),
					TeamsCount: 1,
				}
				if err := db.Create(&player).Error; err != nil {
					return nil, err
				}

				ownership := types.TeamPlayer{TeamID: team.TeamID, PlayerID: player.PlayerID}
				if err := db.Create(&ownership).Error; err != nil {
					return nil, err
				}
			}
		}
	}

	log.Info().
		Int("teams", len(seed.teamIDs)).
		Int("players", playerSeq).
		Msg("League seeded")
	return seed, nil
}

// setupRoutes configures the endpoints exercised by the simulation
func setupRoutes(
	router *gin.Engine,
	secret string,
	authHandlers *auth.GinHandlers,
	tradeHandlers *trade.GinHandlers,
	rosterHandlers *roster.GinHandlers,
	phaseHandlers *phase.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandlers.LoginHandler())
			authGroup.POST("/admin/login", authHandlers.AdminLoginHandler())
		}

		v1.GET("/phase", phaseHandlers.GetPhaseStatusHandler())

		trades := v1.Group("/trades")
		trades.Use(middleware.TeamAuth(secret))
		{
			trades.POST("", tradeHandlers.ProposeTradeHandler())
			trades.GET("", tradeHandlers.ListTradesHandler())
			trades.GET("/:trade_id", tradeHandlers.GetTradeHandler())
			trades.POST("/:trade_id/respond", tradeHandlers.RespondTradeHandler())
			trades.DELETE("/:trade_id", tradeHandlers.CancelTradeHandler())
		}

		rosters := v1.Group("/roster")
		rosters.Use(middleware.TeamAuth(secret))
		{
			rosters.GET("", rosterHandlers.MyRosterHandler())
			rosters.GET("/teams", rosterHandlers.AvailableTeamsHandler())
			rosters.GET("/players", rosterHandlers.AvailablePlayersHandler())
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(secret))
		{
			admin.GET("/trades", tradeHandlers.AdminListTradesHandler())
			admin.POST("/trades/:trade_id/decide", tradeHandlers.AdminDecideHandler())
			admin.POST("/phase", phaseHandlers.SetPhaseHandler())
		}
	}
}
