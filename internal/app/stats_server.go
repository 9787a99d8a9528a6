package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader for real-time stats
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startHealthServer starts an HTTP server for health checks and stats.
// ctx bounds the websocket push loops; Shutdown alone would leave them
// running because it does not close upgraded connections.
func (r *Runner) startHealthServer(ctx context.Context, port int) {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// JSON stats endpoint
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		stats := r.GetStats()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(stats)
	})

	// WebSocket endpoint for real-time stats
	mux.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, req, nil)
		if err != nil {
			r.clients.Logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		// Send stats every second
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := r.GetStats()
				if err := conn.WriteJSON(stats); err != nil {
					return // Client disconnected
				}
			}
		}
	})

	// HTML dashboard
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(dashboardHTML))
	})

	r.healthServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := r.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.clients.Logger.Error("health server error", zap.Error(err))
		}
	}()
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Radarwatch Stats</title>
    <style>
        :root {
            --bg-primary: #0d1117;
            --bg-secondary: #161b22;
            --bg-tertiary: #21262d;
            --border-color: #30363d;
            --text-primary: #c9d1d9;
            --text-secondary: #8b949e;
            --text-heading: #f0f6fc;
            --accent-blue: #58a6ff;
            --accent-green: #3fb950;
            --accent-red: #f85149;
            --accent-yellow: #d29922;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, monospace;
            background: var(--bg-primary);
            color: var(--text-primary);
            padding: 20px;
            line-height: 1.5;
        }
        h1 { color: var(--accent-blue); margin-bottom: 20px; font-size: 24px; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 20px; }
        .card {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 16px;
        }
        .card h3 { color: var(--accent-blue); font-size: 16px; margin-bottom: 12px; }
        .stat-row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid var(--bg-tertiary); }
        .stat-row:last-child { border-bottom: none; }
        .stat-label { color: var(--text-secondary); }
        .stat-value { color: var(--text-heading); font-weight: 600; }
        .stat-value.green { color: var(--accent-green); }
        .stat-value.red { color: var(--accent-red); }
        .stat-value.yellow { color: var(--accent-yellow); }
        .uptime { font-size: 32px; color: var(--accent-blue); margin: 10px 0; }
        .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 20px; }
        .status { display: flex; align-items: center; gap: 8px; }
        .status-dot { width: 10px; height: 10px; border-radius: 50%; }
        .status-dot.connected { background: var(--accent-green); }
        .status-dot.disconnected { background: var(--accent-red); animation: blink 1s infinite; }
        @keyframes blink { 50% { opacity: 0.5; } }
    </style>
</head>
<body>
    <div class="header">
        <h1>📡 Radarwatch</h1>
        <div class="status">
            <div id="conn-dot" class="status-dot disconnected"></div>
            <span id="conn-text">connecting…</span>
        </div>
    </div>
    <div class="uptime" id="uptime">-</div>
    <div class="grid">
        <div class="card">
            <h3>Scheduler</h3>
            <div class="stat-row"><span class="stat-label">State</span><span class="stat-value" id="sched-state">-</span></div>
            <div class="stat-row"><span class="stat-label">Dispatched</span><span class="stat-value" id="sched-dispatched">-</span></div>
            <div class="stat-row"><span class="stat-label">Blocked</span><span class="stat-value yellow" id="sched-blocked">-</span></div>
            <div class="stat-row"><span class="stat-label">Failures</span><span class="stat-value red" id="sched-failures">-</span></div>
            <div class="stat-row"><span class="stat-label">Last Check</span><span class="stat-value" id="sched-last">-</span></div>
        </div>
        <div class="card">
            <h3>Feed</h3>
            <div class="stat-row"><span class="stat-label">Freshness</span><span class="stat-value" id="feed-freshness">-</span></div>
            <div class="stat-row"><span class="stat-label">Current Frame</span><span class="stat-value" id="feed-frame">-</span></div>
            <div class="stat-row"><span class="stat-label">Archive</span><span class="stat-value" id="feed-total">-</span></div>
            <div class="stat-row"><span class="stat-label">Fetches OK</span><span class="stat-value green" id="feed-ok">-</span></div>
            <div class="stat-row"><span class="stat-label">Fetches Failed</span><span class="stat-value red" id="feed-failed">-</span></div>
            <div class="stat-row"><span class="stat-label">Frames Adopted</span><span class="stat-value" id="feed-adopted">-</span></div>
        </div>
        <div class="card">
            <h3>Player</h3>
            <div class="stat-row"><span class="stat-label">Playing</span><span class="stat-value" id="player-playing">-</span></div>
            <div class="stat-row"><span class="stat-label">Index</span><span class="stat-value" id="player-index">-</span></div>
            <div class="stat-row"><span class="stat-label">Frames</span><span class="stat-value" id="player-count">-</span></div>
        </div>
        <div class="card">
            <h3>Process</h3>
            <div class="stat-row"><span class="stat-label">Build</span><span class="stat-value" id="proc-build">-</span></div>
            <div class="stat-row"><span class="stat-label">Go</span><span class="stat-value" id="proc-go">-</span></div>
            <div class="stat-row"><span class="stat-label">Alloc</span><span class="stat-value" id="proc-alloc">-</span></div>
            <div class="stat-row"><span class="stat-label">Goroutines</span><span class="stat-value" id="proc-gr">-</span></div>
        </div>
    </div>
    <script>
        function set(id, v) { document.getElementById(id).textContent = v; }
        function render(s) {
            set('uptime', s.uptime);
            set('sched-state', s.scheduler.state);
            set('sched-dispatched', s.scheduler.dispatched);
            set('sched-blocked', s.scheduler.blocked);
            set('sched-failures', s.scheduler.failures);
            set('sched-last', s.scheduler.last_check_at || '-');
            set('feed-freshness', s.feed.freshness || '-');
            set('feed-frame', s.feed.current_frame || '-');
            set('feed-total', s.feed.total_images + ' images');
            set('feed-ok', s.feed.fetch_successes);
            set('feed-failed', s.feed.fetch_failures);
            set('feed-adopted', s.feed.frames_adopted);
            set('player-playing', s.player.playing ? 'yes' : 'no');
            set('player-index', s.player.index + ' / ' + s.player.frame_count);
            set('player-count', s.player.frame_count);
            set('proc-build', (s.build.commit || 'dev').slice(0, 9));
            set('proc-go', s.build.go_version);
            set('proc-alloc', s.memory.alloc_mb.toFixed(1) + ' MB');
            set('proc-gr', s.memory.num_goroutine);
        }
        function connect() {
            const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(proto + '//' + location.host + '/ws');
            ws.onopen = () => {
                document.getElementById('conn-dot').className = 'status-dot connected';
                set('conn-text', 'live');
            };
            ws.onmessage = (ev) => render(JSON.parse(ev.data));
            ws.onclose = () => {
                document.getElementById('conn-dot').className = 'status-dot disconnected';
                set('conn-text', 'reconnecting…');
                setTimeout(connect, 2000);
            };
        }
        connect();
    </script>
</body>
</html>`
