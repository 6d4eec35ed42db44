package dashboard

import "fmt"

// dashboardHTML is the static status page, carried over byte-identical from
// the original dashboard asset — spec.md's Non-goals exclude reimplementing
// "static HTML/JS dashboard assets", so this is served verbatim rather than
// templated.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Freedom VPN</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #000000; --surface: #1c1c1e; --surface-2: #2c2c2e;
            --text: #f5f5f7; --muted: #a1a1aa; --accent: #0a84ff;
            --ok: #30d158; --bad: #ff453a; --border: #3a3a3c;
        }
        body { font-family: -apple-system, BlinkMacSystemFont, 'SF Pro Text', 'SF Pro Display', 'Segoe UI', sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; }
        .shell { max-width: 980px; margin: 0 auto; padding: 28px 20px 36px; }
        .topbar { display: flex; justify-content: space-between; align-items: center; margin-bottom: 28px; }
        .status-pill { display: inline-flex; align-items: center; gap: 8px; background: var(--surface); border: 1px solid var(--border); border-radius: 999px; padding: 8px 14px; font-size: 13px; }
        .status-dot { width: 8px; height: 8px; border-radius: 999px; background: var(--bad); }
        .status-dot.online { background: var(--ok); box-shadow: 0 0 0 6px rgba(48, 209, 88, 0.16); }
        h1 { font-size: 34px; font-weight: 700; margin-bottom: 6px; }
        .subtitle { color: var(--muted); margin-bottom: 24px; font-size: 14px; }
        .power-wrap { display: flex; justify-content: center; margin: 12px 0 24px; }
        .power-ring { width: 200px; height: 200px; border-radius: 50%; background: conic-gradient(from 0deg, var(--bad), #632525 70%); display: grid; place-items: center; }
        .power-ring.online { background: conic-gradient(from 0deg, var(--ok), #216132 70%); }
        .power-inner { width: 156px; height: 156px; border-radius: 50%; background: var(--surface); border: 1px solid var(--border); display: grid; place-items: center; font-size: 18px; font-weight: 700; }
        .stats-row { display: grid; grid-template-columns: repeat(5, minmax(0, 1fr)); gap: 10px; margin-bottom: 20px; }
        .stat-card { background: var(--surface); border: 1px solid var(--border); border-radius: 12px; padding: 12px; display: flex; flex-direction: column; gap: 6px; }
        .stat-label { color: var(--muted); font-size: 11px; text-transform: uppercase; letter-spacing: 0.4px; }
        .stat-value { color: var(--accent); font-size: 17px; font-weight: 700; }
        .proxy-card { background: var(--surface); border: 1px solid var(--border); border-radius: 14px; padding: 18px; }
        .proxy-card h2 { font-size: 14px; text-transform: uppercase; letter-spacing: 0.5px; margin-bottom: 12px; color: var(--accent); }
        .endpoint-row { display: flex; justify-content: space-between; align-items: center; padding: 10px 0; border-bottom: 1px solid var(--border); font-size: 13px; }
        .endpoint-row:last-of-type { margin-bottom: 10px; }
        code { background: var(--surface-2); border: 1px solid var(--border); border-radius: 6px; padding: 2px 7px; color: #8ec8ff; font-size: 12px; }
        ol { margin-left: 18px; color: var(--muted); font-size: 13px; line-height: 1.6; }
        a { color: #8ec8ff; }
        @media (max-width: 900px) { .stats-row { grid-template-columns: repeat(2, minmax(0, 1fr)); } }
    </style>
</head>
<body>
    <div class="shell">
        <div class="topbar">
            <div class="status-pill"><span class="status-dot" id="status-dot"></span><span id="connection-status">Offline</span></div>
        </div>
        <h1>Freedom VPN</h1>
        <p class="subtitle">Private routing and local proxy metrics.</p>

        <div class="power-wrap">
            <div class="power-ring" id="power-ring"><div class="power-inner" id="power-state">OFFLINE</div></div>
        </div>

        <section class="stats-row">
            <article class="stat-card"><span class="stat-label">Uptime</span><span class="stat-value" id="uptime">—</span></article>
            <article class="stat-card"><span class="stat-label">Active</span><span class="stat-value" id="connections">—</span></article>
            <article class="stat-card"><span class="stat-label">Total</span><span class="stat-value" id="totalconns">—</span></article>
            <article class="stat-card"><span class="stat-label">Sent</span><span class="stat-value" id="sent">—</span></article>
            <article class="stat-card"><span class="stat-label">Received</span><span class="stat-value" id="recv">—</span></article>
        </section>

        <section class="proxy-card">
            <h2>Proxy Setup</h2>
            <div class="endpoint-row"><span>HTTP Proxy</span><code>127.0.0.1:8080</code></div>
            <div class="endpoint-row"><span>QUIC Server</span><code>127.0.0.1:5000</code></div>
            <div class="endpoint-row"><span>Dashboard API</span><code>127.0.0.1:9090</code></div>
            <ol>
                <li>Open browser network/proxy settings.</li>
                <li>Set HTTP proxy to <code>127.0.0.1</code> and port <code>8080</code>.</li>
                <li>Keep Freedom VPN running while browsing.</li>
            </ol>
        </section>

        <footer style="margin-top:16px;color:var(--muted);font-size:12px;">Freedom VPN Dashboard &nbsp;|&nbsp; <a href="https://github.com/ayobro1/freedom-network" target="_blank">GitHub</a></footer>
    </div>

    <script>
        function formatBytes(bytes) {
            if (bytes === 0) return '0 B';
            const k = 1024, sizes = ['B', 'KB', 'MB', 'GB'];
            const i = Math.floor(Math.log(bytes) / Math.log(k));
            return (bytes / Math.pow(k, i)).toFixed(1) + ' ' + sizes[i];
        }
        function formatUptime(ms) {
            const s = Math.floor(ms / 1000), m = Math.floor(s / 60), h = Math.floor(m / 60), d = Math.floor(h / 24);
            if (d > 0) return d + 'd ' + (h % 24) + 'h';
            if (h > 0) return h + 'h ' + (m % 60) + 'm';
            if (m > 0) return m + 'm ' + (s % 60) + 's';
            return s + 's';
        }
        function setOnline(online) {
            const dot = document.getElementById('status-dot');
            const status = document.getElementById('connection-status');
            const ring = document.getElementById('power-ring');
            const state = document.getElementById('power-state');
            if (online) {
                dot.classList.add('online');
                status.textContent = 'Online';
                ring.classList.add('online');
                state.textContent = 'ONLINE';
            } else {
                dot.classList.remove('online');
                status.textContent = 'Offline';
                ring.classList.remove('online');
                state.textContent = 'OFFLINE';
            }
        }

        async function refresh() {
            try {
                const [sr, dr] = await Promise.all([fetch('/api/status'), fetch('/api/stats')]);
                const s = await sr.json(), d = await dr.json();
                document.getElementById('uptime').textContent = formatUptime(s.uptime_ms);
                document.getElementById('connections').textContent = s.connections_active;
                document.getElementById('totalconns').textContent = s.connections_total;
                document.getElementById('sent').textContent = formatBytes(d.bytes_sent);
                document.getElementById('recv').textContent = formatBytes(d.bytes_received);
                setOnline(true);
            } catch(e) {
                setOnline(false);
                console.error(e);
            }
        }
        setInterval(refresh, 2000);
        refresh();
    </script>
</body>
</html>`

func htmlDashboardResponse() string {
	return fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=utf-8\r\nContent-Length: %d\r\n\r\n%s",
		len(dashboardHTML), dashboardHTML,
	)
}
