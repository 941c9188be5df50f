package sim

// prelude defines the page model. Go code and evaluated scripts both work
// on the global page table.
const prelude = `
page = {
  url = "about:blank",
  elements = {
    body   = { kind = "body" },
    search = { kind = "input", type = "text", value = "" },
    notes  = { kind = "textarea", value = "" },
    link   = { kind = "a", href = "about:next" },
    agree  = { kind = "input", type = "checkbox" },
  },
  order = { "body", "search", "notes", "link", "agree" },
  focus = "body",
  scroll_x = 0,
  scroll_y = 0,
  width = 1600,
  height = 6000,
  view_w = 1280,
  view_h = 800,
  history = { "about:blank" },
  index = 1,
  reloads = 0,
  hard_reloads = 0,
}

local text_types = {
  text = true, search = true, email = true, password = true,
  url = true, tel = true, number = true,
}

local function clamp(v, lo, hi)
  if v < lo then return lo end
  if v > hi then return hi end
  return v
end

function page.editable()
  local el = page.elements[page.focus]
  if el == nil or el.disabled or el.readonly then return false end
  if el.kind == "textarea" or el.editable then return true end
  if el.kind ~= "input" then return false end
  return text_types[el.type or "text"] == true
end

function page.scroll_to(x, y)
  page.scroll_x = clamp(x, 0, math.max(page.width - page.view_w, 0))
  page.scroll_y = clamp(y, 0, math.max(page.height - page.view_h, 0))
end

function page.scroll_by(dx, dy)
  page.scroll_to(page.scroll_x + dx, page.scroll_y + dy)
end

function page.focus_on(name)
  if page.elements[name] == nil then return false end
  page.focus = name
  return true
end

function page.focus_next()
  local n = #page.order
  for i, name in ipairs(page.order) do
    if name == page.focus then
      page.focus = page.order[(i % n) + 1]
      return page.focus
    end
  end
  page.focus = page.order[1]
  return page.focus
end

function page.blur()
  page.focus = "body"
end

function page.type(ch)
  if not page.editable() then return false end
  local el = page.elements[page.focus]
  el.value = (el.value or "") .. ch
  return true
end

function page.erase()
  if not page.editable() then return false end
  local el = page.elements[page.focus]
  local v = el.value or ""
  el.value = string.sub(v, 1, -2)
  return true
end

function page.activate()
  local el = page.elements[page.focus]
  if el == nil then return false end
  if el.kind == "a" then
    page.navigate(el.href)
    return true
  end
  if el.kind == "input" and el.type == "checkbox" then
    el.checked = not el.checked
    return true
  end
  return false
end

local function load(url)
  page.url = url
  page.scroll_x = 0
  page.scroll_y = 0
  page.focus = "body"
end

function page.navigate(url)
  for i = #page.history, page.index + 1, -1 do
    table.remove(page.history, i)
  end
  table.insert(page.history, url)
  page.index = #page.history
  load(url)
end

function page.can_go_back()
  return page.index > 1
end

function page.can_go_forward()
  return page.index < #page.history
end

function page.back()
  if not page.can_go_back() then return false end
  page.index = page.index - 1
  load(page.history[page.index])
  return true
end

function page.forward()
  if not page.can_go_forward() then return false end
  page.index = page.index + 1
  load(page.history[page.index])
  return true
end

function page.reload(bypass)
  if bypass then
    page.hard_reloads = page.hard_reloads + 1
  else
    page.reloads = page.reloads + 1
  end
  load(page.url)
end

function page.value()
  local el = page.elements[page.focus]
  if el == nil then return "" end
  return el.value or ""
end
`
