package chrome

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/pageguard/internal/observer"
)

// BindingName is the runtime binding the page bridge reports events through.
const BindingName = "__pageguardEmit"

// collectExpr gathers page information in the document context. It is
// self-contained so it can run in tabs where the bridge is not installed.
const collectExpr = `(() => ({
	url: window.location.href,
	cookie: document.cookie || "",
	script_count: document.querySelectorAll("script").length,
	script_sources: Array.from(document.querySelectorAll("script[src]")).map((s) => s.getAttribute("src")),
	password_fields: document.querySelectorAll('input[type="password"]').length
}))()`

// bridgeScript is installed in every new document of a tab. It only moves
// data between the DOM and the binding; all decisions are made in Go.
const bridgeScript = `(() => {
	if (window.top !== window || window.__pageguard) {
		return;
	}
	const emit = (msg) => {
		try {
			window.` + BindingName + `(JSON.stringify(msg));
		} catch (e) {
			// binding not available yet
		}
	};
	const attr = "data-pageguard-id";
	const byID = (id) => {
		const el = document.querySelector("[" + attr + '="' + CSS.escape(id) + '"]');
		if (!el) {
			throw new Error("field not found: " + id);
		}
		return el;
	};
	let seq = 0;
	let advisory = null;

	window.__pageguard = {
		passwordFields() {
			return Array.from(document.querySelectorAll('input[type="password"]')).map((el) => {
				if (!el.getAttribute(attr)) {
					el.setAttribute(attr, "pg-" + (++seq));
				}
				return el.getAttribute(attr);
			});
		},
		attach(id) {
			const el = byID(id);
			el.addEventListener("focus", () => emit({ type: "focus", field: id }));
			el.addEventListener("blur", () => emit({ type: "blur", field: id }));
			el.addEventListener("input", () => emit({ type: "input", field: id, value: el.value }));
			return true;
		},
		createAdvisory() {
			if (advisory) {
				return true;
			}
			advisory = document.createElement("div");
			advisory.id = "password-strength-indicator";
			advisory.style.cssText = [
				"position: absolute",
				"background: white",
				"border: 2px solid #ddd",
				"border-radius: 4px",
				"padding: 8px",
				"font-size: 12px",
				"z-index: 10000",
				"box-shadow: 0 2px 8px rgba(0,0,0,0.2)",
				"max-width: 250px",
				"display: none"
			].join(";");
			document.body.appendChild(advisory);
			return true;
		},
		render(state) {
			if (!advisory) {
				throw new Error("advisory not created");
			}
			advisory.replaceChildren();
			const label = document.createElement("div");
			label.style.fontWeight = "bold";
			label.style.color = state.color;
			label.textContent = state.label;
			const body = document.createElement("div");
			body.style.marginTop = "4px";
			if (state.all_clear) {
				body.textContent = "` + observer.AllClearMessage + `";
			} else if (state.suggestions && state.suggestions.length > 0) {
				const title = document.createElement("strong");
				title.textContent = "` + observer.SuggestionsTitle + `";
				body.appendChild(title);
				for (const s of state.suggestions) {
					body.appendChild(document.createElement("br"));
					body.appendChild(document.createTextNode("• " + s));
				}
			}
			advisory.append(label, body);
			advisory.style.top = state.top + "px";
			advisory.style.left = state.left + "px";
			advisory.style.display = state.visible ? "block" : "none";
			return true;
		},
		fieldRect(id) {
			const r = byID(id).getBoundingClientRect();
			return { top: r.top, left: r.left, bottom: r.bottom, right: r.right };
		},
		scrollOffset() {
			return {
				x: window.pageXOffset || document.documentElement.scrollLeft,
				y: window.pageYOffset || document.documentElement.scrollTop
			};
		},
		watchMutations() {
			new MutationObserver((mutations) => {
				const added = [];
				for (const m of mutations) {
					for (const node of m.addedNodes) {
						const element = node.nodeType === 1;
						added.push({
							element: element,
							tag: element ? node.tagName : "",
							contains_password: element && !!node.querySelector && !!node.querySelector('input[type="password"]')
						});
					}
				}
				if (added.length > 0) {
					emit({ type: "mutation", added: added });
				}
			}).observe(document.body, { childList: true, subtree: true });
			return true;
		},
		pageInfo() {
			return ` + collectExpr + `;
		}
	};

	const ready = () => emit({ type: "ready", value: window.location.href });
	if (document.readyState === "loading") {
		document.addEventListener("DOMContentLoaded", ready);
	} else {
		ready();
	}
})();`

// message is the JSON payload the bridge sends through the binding.
type message struct {
	Type  string               `json:"type"`
	Field string               `json:"field"`
	Value string               `json:"value"`
	Added []observer.AddedNode `json:"added"`
}

// messageReady announces a new top-level document. Its value is the
// document URL.
const messageReady = "ready"

var errUnknownMessage = errors.New("unknown bridge message")

func decodeMessage(payload string) (message, error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return message{}, fmt.Errorf("failed to decode bridge message: %w", err)
	}
	return m, nil
}

// event converts a field or mutation message into an observer event.
func (m message) event() (observer.Event, error) {
	if m.Type == "mutation" {
		return observer.MutationEvent{Added: m.Added}, nil
	}
	kind, ok := observer.ParseFieldEventKind(m.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownMessage, m.Type)
	}
	if m.Field == "" {
		return nil, fmt.Errorf("%s message without field", m.Type)
	}
	ev := observer.FieldEvent{Kind: kind, Field: observer.FieldID(m.Field)}
	if kind == observer.Input {
		ev.Value = m.Value
	}
	return ev, nil
}

// call builds an expression invoking a bridge method with JSON encoded
// arguments.
func call(method string, args ...any) (string, error) {
	expr := "window.__pageguard." + method + "("
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode argument for %s: %w", method, err)
		}
		if i > 0 {
			expr += ", "
		}
		expr += string(data)
	}
	return expr + ")", nil
}
