package dashboard

// Per-user portfolio cards with a per-venue breakdown, fed by the SSE stream.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Folio</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    body::before {
      content:'';
      position:fixed;
      inset:0;
      background:
        linear-gradient(90deg, rgba(0,0,0,.02) 1px, transparent 1px),
        linear-gradient(rgba(0,0,0,.02) 1px, transparent 1px);
      background-size:12px 12px;
      pointer-events:none;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      position:relative;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:2rem;
    }
    #app::after {
      content:'';
      position:absolute;
      inset:8px;
      border:1px dashed rgba(0,0,0,.15);
      pointer-events:none;
    }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .user-card {
      border:3px solid var(--ink);
      padding:1.5rem;
      background:#fff;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:1rem;
    }
    .user-header { display:flex; justify-content:space-between; align-items:center; gap:.5rem; }
    .user-name {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.75rem;
      letter-spacing:.08em;
      margin:0;
    }
    .pill {
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.08em;
      border:2px solid var(--ink);
      padding:.25rem .6rem;
      background:#fff;
    }
    .pill.muted { color:var(--ink-soft); border-color:var(--ink-soft); }
    .total {
      border:3px solid var(--ink);
      padding:1.2rem;
      background:#fff;
      box-shadow:6px 6px 0 rgba(0,0,0,.12);
    }
    .total .label { font-size:.6rem; text-transform:uppercase; letter-spacing:.12em; color:var(--ink-mid); }
    .total .value { font-size:1.4rem; font-weight:700; margin-top:.35rem; }
    .venue-title {
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      margin:.5rem 0 .25rem;
      color:var(--ink-mid);
    }
    table { width:100%; border-collapse:collapse; font-size:.75rem; }
    th, td { text-align:left; padding:.35rem .5rem; border-bottom:1px solid rgba(0,0,0,.12); }
    th { font-size:.6rem; text-transform:uppercase; letter-spacing:.1em; color:var(--ink-soft); }
    td.num { text-align:right; font-variant-numeric:tabular-nums; }
    .empty { color:var(--ink-soft); font-size:.75rem; }
  </style>
</head>
<body>
<div id="app">
  <header>
    <p class="eyebrow">Folio — portfolio worth across venues</p>
    <div class="status" id="status">Status: connecting</div>
  </header>
  <div id="users"></div>
  <div class="empty" id="empty" hidden>No snapshots committed yet. The first refresh cycle will populate this page.</div>
</div>
<script>
const statusEl = document.getElementById('status');
const usersEl = document.getElementById('users');
const emptyEl = document.getElementById('empty');
const userViews = new Map();

function formatTs(ts){
  if(!ts) return 'Waiting…';
  const date = new Date(ts);
  if(Number.isNaN(date.getTime())) return 'Waiting…';
  return date.toLocaleString([], { hour12:false });
}

function ensureUserView(name){
  let view = userViews.get(name);
  if(view) return view;

  const card = document.createElement('div');
  card.className = 'user-card';

  const header = document.createElement('div');
  header.className = 'user-header';
  const title = document.createElement('h2');
  title.className = 'user-name';
  title.textContent = name;
  const updated = document.createElement('span');
  updated.className = 'pill muted';
  updated.textContent = 'Waiting…';
  header.append(title, updated);

  const total = document.createElement('div');
  total.className = 'total';
  const label = document.createElement('div');
  label.className = 'label';
  label.textContent = 'Total worth';
  const totalValue = document.createElement('div');
  totalValue.className = 'value';
  totalValue.textContent = '$0.00';
  total.append(label, totalValue);

  const venues = document.createElement('div');

  card.append(header, total, venues);
  usersEl.appendChild(card);

  view = { totalEl: totalValue, updatedEl: updated, venuesEl: venues };
  userViews.set(name, view);
  return view;
}

function renderVenues(container, holdings){
  container.replaceChildren();
  const byVenue = new Map();
  for(const h of holdings){
    if(!byVenue.has(h.venue)) byVenue.set(h.venue, []);
    byVenue.get(h.venue).push(h);
  }
  for(const [venue, rows] of byVenue){
    const title = document.createElement('div');
    title.className = 'venue-title';
    title.textContent = venue;
    container.appendChild(title);

    const table = document.createElement('table');
    table.innerHTML = '<tr><th>Asset</th><th style="text-align:right">Quantity</th><th style="text-align:right">Worth</th></tr>';
    rows.sort((a, b) => parseFloat(b.value_usd) - parseFloat(a.value_usd));
    for(const row of rows){
      const tr = document.createElement('tr');
      const sym = document.createElement('td');
      sym.textContent = row.symbol;
      const qty = document.createElement('td');
      qty.className = 'num';
      qty.textContent = row.quantity;
      const worth = document.createElement('td');
      worth.className = 'num';
      worth.textContent = '$' + parseFloat(row.value_usd).toFixed(2);
      tr.append(sym, qty, worth);
      table.appendChild(tr);
    }
    container.appendChild(table);
  }
}

function handleSnapshot(snap){
  emptyEl.hidden = true;
  const view = ensureUserView(snap.user || '—');
  const holdings = snap.holdings || [];

  let total = 0;
  for(const h of holdings){
    if(h.resolved) total += parseFloat(h.value_usd) || 0;
  }
  view.totalEl.textContent = '$' + total.toFixed(2);
  view.updatedEl.textContent = formatTs(snap.taken_at);
  renderVenues(view.venuesEl, holdings);
}

function connectSSE(){
  const source = new EventSource('/portfolio/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('portfolio', (event) => {
    try{
      handleSnapshot(JSON.parse(event.data));
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('no_data', () => {
    emptyEl.hidden = false;
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
