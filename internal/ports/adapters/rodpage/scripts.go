package rodpage

// LastInputKey is the localStorage key holding the last good timecode.
const LastInputKey = "__timejump_last__"

// Video IDs live in a WeakMap on window so the same element keeps its ID
// across snapshots without touching the DOM.
const snapshotJS = `() => {
  const reg = window.__timejump_ids__ || (window.__timejump_ids__ = { map: new WeakMap(), next: 0 });
  const videos = Array.from(document.querySelectorAll("video")).map((v, i) => {
    let id = reg.map.get(v);
    if (id === undefined) {
      id = "v" + reg.next++;
      reg.map.set(v, id);
    }
    const r = v.getBoundingClientRect();
    return {
      id: id,
      index: i,
      rect: { x: r.left, y: r.top, width: r.width, height: r.height },
      paused: v.paused,
      ended: v.ended,
      readyState: v.readyState,
      duration: Number.isFinite(v.duration) ? v.duration : null,
      live: v.duration === Infinity,
      position: v.currentTime || 0,
      src: v.currentSrc || v.src || "",
    };
  });
  return {
    url: location.href,
    origin: location.origin,
    viewport: { width: window.innerWidth || 0, height: window.innerHeight || 0 },
    videos: videos,
  };
}`

const seekJS = `(id, t) => {
  const reg = window.__timejump_ids__;
  if (!reg) return false;
  const v = Array.from(document.querySelectorAll("video")).find((el) => reg.map.get(el) === id);
  if (!v) return false;
  v.currentTime = t;
  for (const type of ["timeupdate", "seeking", "seeked"]) {
    v.dispatchEvent(new Event(type, { bubbles: true }));
  }
  return true;
}`

const loadJS = `(key) => window.localStorage.getItem(key)`

const saveJS = `(key, value) => { window.localStorage.setItem(key, value); return true; }`
