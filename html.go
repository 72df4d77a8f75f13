package main

const consoleHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>loginprobe</title>
  <style>
    :root { --bg:#0b1224; --panel:#0f172a; --accent:#38bdf8; --muted:#94a3b8; --line:rgba(255,255,255,0.1); }
    body { margin:0; font-family: "Space Grotesk", "Segoe UI", sans-serif; background:
      radial-gradient(circle at 15% 15%, rgba(56,189,248,0.18), transparent 40%),
      var(--bg);
      color:#e2e8f0; display:flex; justify-content:center; min-height:100vh; padding:24px; box-sizing:border-box; }
    .card { background:linear-gradient(160deg, rgba(15,23,42,0.96), rgba(2,6,23,0.96)); border:1px solid var(--line); border-radius:18px; padding:32px 36px; max-width:760px; width:100%; box-shadow:0 24px 70px rgba(0,0,0,0.4); }
    h1 { margin:0 0 8px; font-size:28px; color:var(--accent); }
    h2 { margin:24px 0 8px; font-size:16px; color:var(--muted); text-transform:uppercase; letter-spacing:0.3px; }
    p { margin:8px 0; line-height:1.5; color:var(--muted); }
    form { display:grid; gap:14px; margin-top:18px; }
    label { display:block; margin-bottom:6px; font-size:13px; color:var(--muted); letter-spacing:0.3px; text-transform:uppercase; }
    input, select { display:block; width:100%; box-sizing:border-box; background:#0b1224; border:1px solid var(--line); color:#e2e8f0; border-radius:10px; padding:10px 12px; font-size:15px; }
    button { width:100%; border:0; border-radius:10px; padding:12px 14px; font-weight:600; background:var(--accent); color:#062238; cursor:pointer; }
    button:disabled { opacity:0.6; cursor:wait; }
    .url { font-family: ui-monospace, monospace; font-size:13px; color:var(--accent); }
    .alert { margin-top:14px; padding:10px 12px; border-radius:10px; font-size:13px; white-space:pre-line; }
    .error { border:1px solid rgba(248,113,113,0.4); background:rgba(248,113,113,0.12); color:#fecaca; }
    .success { border:1px solid rgba(74,222,128,0.4); background:rgba(74,222,128,0.12); color:#bbf7d0; }
    pre { background:#020617; border:1px solid var(--line); border-radius:10px; padding:12px; overflow:auto; font-size:12px; max-height:420px; }
    .hidden { display:none; }
  </style>
</head>
<body>
  <div class="card">
    <h1>loginprobe</h1>
    <p>Submit credentials to a login endpoint and inspect the raw response.</p>
    <form id="login-form">
      <div>
        <label for="endpoint">Endpoint</label>
        <select id="endpoint" name="endpoint">{{ENDPOINT_OPTIONS}}</select>
        <p>Login URL: <span class="url" id="login-url">{{LOGIN_URL}}</span></p>
      </div>
      <div>
        <label for="email">Email</label>
        <input id="email" name="email" type="email" autocomplete="username" required>
      </div>
      <div>
        <label for="password">Password</label>
        <input id="password" name="password" type="password" autocomplete="current-password" required>
      </div>
      <button id="submit" type="submit">Log in</button>
    </form>
    <div id="error" class="alert error hidden"></div>
    <div id="success" class="alert success hidden"></div>
    <div id="result" class="hidden">
      <h2>Response</h2>
      <pre id="result-body"></pre>
    </div>
    <h2>Token</h2>
    <pre id="token">-</pre>
  </div>
  <script>
    const loginPath = '{{LOGIN_PATH}}';
    const form = document.getElementById('login-form');
    const select = document.getElementById('endpoint');
    const button = document.getElementById('submit');

    function show(id, text) {
      const el = document.getElementById(id);
      el.textContent = text || '';
      el.classList.toggle('hidden', !text);
    }

    function render(state) {
      const loading = !!state.loading;
      button.disabled = loading;
      select.disabled = loading;
      button.textContent = loading ? 'Connecting...' : 'Log in';
      show('error', state.errorMessage);
      show('success', state.successMessage);
      const result = document.getElementById('result');
      if (state.result) {
        document.getElementById('result-body').textContent = JSON.stringify(state.result, null, 2);
        result.classList.remove('hidden');
      } else {
        result.classList.add('hidden');
      }
      if (!loading && state.successMessage) {
        loadToken();
      }
    }

    async function loadToken() {
      const resp = await fetch('/api/token');
      if (!resp.ok) return;
      const body = await resp.json();
      document.getElementById('token').textContent = body.present ? JSON.stringify(body, null, 2) : '-';
    }

    select.addEventListener('change', async () => {
      const resp = await fetch('/api/endpoint', {
        method: 'PUT',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ endpoint: select.value }),
      });
      const body = await resp.json();
      if (!resp.ok) {
        show('error', body.detail || 'Unable to select endpoint');
        return;
      }
      document.getElementById('login-url').textContent = body.selected + loginPath;
    });

    form.addEventListener('submit', async (ev) => {
      ev.preventDefault();
      const resp = await fetch('/api/attempts', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({
          email: document.getElementById('email').value,
          password: document.getElementById('password').value,
        }),
      });
      if (!resp.ok) {
        const body = await resp.json().catch(() => ({}));
        show('error', body.detail || ('Submission rejected: ' + resp.status));
      }
    });

    function connect() {
      const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
      const ws = new WebSocket(proto + '//' + location.host + '/ws');
      ws.onmessage = (ev) => {
        try {
          render(JSON.parse(ev.data));
        } catch (e) {
          console.error('bad state message', e);
        }
      };
      ws.onclose = () => setTimeout(connect, 2000);
    }

    connect();
    loadToken();
  </script>
</body>
</html>
`
