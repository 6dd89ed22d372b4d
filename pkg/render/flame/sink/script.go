package sink

// interactionJS is the client-side behavior embedded in every flame graph
// SVG: click-to-zoom, hover details, regex search with an ignore-case
// toggle, and view state mirrored into the URL query string (x = zoomed
// frame index, s = search term, i = ignore case) so a copied link reproduces
// the view. All mutable state lives in the single `view` object built by
// init; handlers receive and mutate that object only.
const interactionJS = `
var view = null;

function init(evt) {
  var svg = document.getElementsByTagName("svg")[0];
  var groups = document.querySelectorAll("#frames > g.frame");
  var frames = [];
  for (var i = 0; i < groups.length; i++) {
    var g = groups[i];
    var rect = g.getElementsByTagName("rect")[0];
    var text = g.getElementsByTagName("text")[0];
    var title = g.getElementsByTagName("title")[0];
    var full = title ? title.textContent : "";
    frames.push({
      el: g,
      rect: rect,
      text: text,
      index: i,
      depth: parseInt(g.getAttribute("data-depth"), 10) || 0,
      label: full.replace(/ \([^()]*\)$/, ""),
      x: parseFloat(rect.getAttribute("x")),
      w: parseFloat(rect.getAttribute("width")),
      highlighted: false
    });
  }

  view = {
    svg: svg,
    frames: frames,
    details: document.getElementById("details"),
    unzoomBtn: document.getElementById("unzoom"),
    searchBtn: document.getElementById("search"),
    icBtn: document.getElementById("ignorecase"),
    zoomed: null,
    term: "",
    ignoreCase: false
  };

  for (var j = 0; j < frames.length; j++) {
    attachFrame(view, frames[j]);
  }
  view.unzoomBtn.addEventListener("click", function () { unzoom(view); });
  view.searchBtn.addEventListener("click", function () { searchPrompt(view); });
  view.icBtn.addEventListener("click", function () { toggleIgnoreCase(view); });

  applyURLState(view);
}

function attachFrame(v, f) {
  f.el.addEventListener("click", function () {
    if (v.zoomed === f) { unzoom(v); } else { zoom(v, f); }
  });
  f.el.addEventListener("mouseover", function () {
    var title = f.el.getElementsByTagName("title")[0];
    v.details.textContent = title ? title.textContent : f.label;
  });
  f.el.addEventListener("mouseout", function () {
    v.details.textContent = " ";
  });
}

function zoom(v, target) {
  var eps = 0.0001;
  var totalW = svgCfg.width - 2 * svgCfg.xpad;
  var ratio = totalW / target.w;

  for (var i = 0; i < v.frames.length; i++) {
    var f = v.frames[i];
    var inside = f.x >= target.x - eps && f.x + f.w <= target.x + target.w + eps && f.depth >= target.depth;
    var ancestor = f.depth < target.depth && f.x <= target.x + eps && f.x + f.w >= target.x + target.w - eps;

    f.el.classList.remove("hide", "parent");
    if (inside) {
      setGeometry(f, svgCfg.xpad + (f.x - target.x) * ratio, f.w * ratio);
    } else if (ancestor) {
      f.el.classList.add("parent");
      setGeometry(f, svgCfg.xpad, totalW);
    } else {
      f.el.classList.add("hide");
    }
  }

  v.zoomed = target;
  v.unzoomBtn.classList.remove("hide");
  syncURL(v);
}

function unzoom(v) {
  for (var i = 0; i < v.frames.length; i++) {
    var f = v.frames[i];
    f.el.classList.remove("hide", "parent");
    setGeometry(f, f.x, f.w);
  }
  v.zoomed = null;
  v.unzoomBtn.classList.add("hide");
  syncURL(v);
}

function setGeometry(f, x, w) {
  f.rect.setAttribute("x", x.toFixed(1));
  f.rect.setAttribute("width", w.toFixed(1));
  if (f.text) {
    f.text.setAttribute("x", (x + 3).toFixed(1));
    f.text.textContent = fitLabel(f.label, w);
  }
}

function fitLabel(label, w) {
  var chars = Math.floor(w / (svgCfg.fontSize * svgCfg.fontWidth));
  if (chars < 3) { return ""; }
  if (chars >= label.length) { return label; }
  return label.substring(0, chars - 2) + "..";
}

function searchPrompt(v) {
  if (v.term !== "") {
    clearSearch(v);
    return;
  }
  var term = prompt("Enter a search term (regexp allowed)", "");
  if (term === null || term === "") { return; }
  runSearch(v, term);
}

function runSearch(v, term) {
  var re;
  try {
    re = new RegExp(term, v.ignoreCase ? "i" : "");
  } catch (e) {
    v.details.textContent = "invalid search pattern";
    return;
  }

  v.term = term;
  var spans = [];
  for (var i = 0; i < v.frames.length; i++) {
    var f = v.frames[i];
    if (f.depth > 0 && re.test(f.label)) {
      highlightFrame(f, true);
      spans.push([f.x, f.x + f.w]);
    } else {
      highlightFrame(f, false);
    }
  }

  var matched = mergedWidth(spans);
  var totalW = svgCfg.width - 2 * svgCfg.xpad;
  var pct = totalW > 0 ? (100 * matched / totalW) : 0;
  v.details.textContent = "Matched: " + pct.toFixed(1) + "%";
  v.searchBtn.classList.add("show");
  v.searchBtn.textContent = "Reset Search";
  syncURL(v);
}

// mergedWidth sums the [start,end] spans, counting overlapping x-ranges
// once so stacked matches do not inflate the percentage.
function mergedWidth(spans) {
  spans.sort(function (a, b) { return a[0] - b[0]; });
  var total = 0;
  var end = -Infinity;
  var start = 0;
  for (var i = 0; i < spans.length; i++) {
    if (spans[i][0] > end) {
      total += Math.max(0, end - start);
      start = spans[i][0];
      end = spans[i][1];
    } else if (spans[i][1] > end) {
      end = spans[i][1];
    }
  }
  total += Math.max(0, end - start);
  return total;
}

function clearSearch(v) {
  v.term = "";
  for (var i = 0; i < v.frames.length; i++) {
    highlightFrame(v.frames[i], false);
  }
  v.details.textContent = " ";
  v.searchBtn.classList.remove("show");
  v.searchBtn.textContent = "Search";
  syncURL(v);
}

function highlightFrame(f, on) {
  if (on === f.highlighted) { return; }
  f.highlighted = on;
  if (on) {
    f.origFill = f.rect.getAttribute("fill");
    f.rect.setAttribute("fill", "rgb(230,0,230)");
  } else if (f.origFill) {
    f.rect.setAttribute("fill", f.origFill);
  }
}

function toggleIgnoreCase(v) {
  v.ignoreCase = !v.ignoreCase;
  v.icBtn.classList.toggle("show", v.ignoreCase);
  if (v.term !== "") {
    var term = v.term;
    v.term = "";
    runSearch(v, term);
  } else {
    syncURL(v);
  }
}

function syncURL(v) {
  if (!window.history || !window.history.replaceState) { return; }
  var params = new URLSearchParams();
  if (v.zoomed !== null) { params.set("x", String(v.zoomed.index)); }
  if (v.term !== "") { params.set("s", v.term); }
  if (v.ignoreCase) { params.set("i", "1"); }
  var query = params.toString();
  var url = window.location.pathname + (query ? "?" + query : "");
  window.history.replaceState(null, "", url);
}

function applyURLState(v) {
  var params = new URLSearchParams(window.location.search);
  if (params.get("i") === "1") {
    v.ignoreCase = true;
    v.icBtn.classList.add("show");
  }
  var x = params.get("x");
  if (x !== null) {
    var idx = parseInt(x, 10);
    if (!isNaN(idx) && idx >= 0 && idx < v.frames.length) {
      zoom(v, v.frames[idx]);
    }
  }
  var s = params.get("s");
  if (s !== null && s !== "") {
    runSearch(v, s);
  }
}
`
