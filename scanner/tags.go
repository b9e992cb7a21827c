package scanner

// Semantic tags derived from binding-point categories. Categories from
// different languages collapse onto the same tag.
const (
	TagInterface       = "🔌 interface"
	TagEventDriven     = "📡 event-driven"
	TagAPIEndpoint     = "🌐 api-endpoint"
	TagAPIConsumer     = "📤 api-consumer"
	TagDataModel       = "💾 data-model"
	TagConfigDependent = "⚙️ config-dependent"
	TagStateManagement = "🔄 state-management"
	TagDecorated       = "🏷️ decorated"
	TagUnsafeCode      = "⚠️ unsafe-code"
	TagConcurrent      = "⚡ concurrent"
	TagTest            = "🧪 test"
)

var categoryTags = map[string]string{
	"protocols":        TagInterface,
	"interfaces":       TagInterface,
	"traits":           TagInterface,
	"delegates":        TagEventDriven,
	"event_emitters":   TagEventDriven,
	"signals":          TagEventDriven,
	"combine":          TagEventDriven,
	"api_endpoints":    TagAPIEndpoint,
	"api_routes":       TagAPIEndpoint,
	"http_handlers":    TagAPIEndpoint,
	"routes":           TagAPIEndpoint,
	"spring_endpoints": TagAPIEndpoint,
	"api_calls":        TagAPIConsumer,
	"db_models":        TagDataModel,
	"core_data":        TagDataModel,
	"env_vars":         TagConfigDependent,
	"hooks":            TagStateManagement,
	"context":          TagStateManagement,
	"swiftui_env":      TagStateManagement,
	"providers":        TagStateManagement,
	"decorators":       TagDecorated,
	"annotations":      TagDecorated,
}

// deriveTags maps each node's binding-point categories onto its tag set.
// Purely derived and idempotent.
func (s *scan) deriveTags() {
	for _, n := range s.nodes {
		for _, bp := range n.BindingPoints {
			if tag, ok := categoryTags[bp.Type]; ok {
				n.addTag(tag)
			}
		}
	}
}
