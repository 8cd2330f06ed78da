package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zeroshade/sgvdesk/internal/catalog"
	"github.com/zeroshade/sgvdesk/internal/config"
	"github.com/zeroshade/sgvdesk/internal/monitoring"
	"github.com/zeroshade/sgvdesk/types"
)

type binView struct {
	Bin      string            `json:"bin"`
	Items    []types.CartEntry `json:"items"`
	TotalEnd int               `json:"totalEnd"`
}

type cartView struct {
	Cart string    `json:"cart"`
	Bins []binView `json:"bins"`
}

func catalogState(items []*types.CatalogItem) string {
	if len(items) == 0 {
		return "unavailable"
	}
	return "ok"
}

// listInventory renders every cart and bin, narrowed to the matching
// entries when a search is active.
func listInventory(inv *catalog.Inventory, q catalog.Query, searching bool) []cartView {
	carts := make([]cartView, 0, len(inv.Carts))
	for _, cart := range inv.Carts {
		cv := cartView{Cart: cart.Cart, Bins: make([]binView, 0, len(cart.Bins))}
		for i := range cart.Bins {
			stock := &cart.Bins[i]
			entries := stock.Entries
			if searching {
				entries = catalog.Filter(entries, q)
				if len(entries) == 0 {
					continue
				}
			}
			cv.Bins = append(cv.Bins, binView{Bin: stock.Bin, Items: entries, TotalEnd: stock.Total()})
		}
		carts = append(carts, cv)
	}
	return carts
}

func GetInventory() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		if q, ok := c.GetQuery("q"); ok {
			sess.Search = strings.TrimSpace(q)
		}

		inv := sess.Inventory()
		if inv == nil {
			c.JSON(http.StatusOK, gin.H{"catalog": "unavailable", "notice": false, "search": sess.Search, "carts": []cartView{}})
			return
		}

		q, searching := catalog.ParseQuery(sess.Search)
		c.JSON(http.StatusOK, gin.H{
			"catalog": "ok",
			"notice":  !sess.SeenNotice,
			"search":  sess.Search,
			"carts":   listInventory(inv, q, searching),
		})
	}
}

func SearchInventory() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		sess.Search = strings.TrimSpace(c.Query("q"))
		q, ok := catalog.ParseQuery(sess.Search)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"search": nil})
			return
		}
		monitoring.TrackSearch(string(q.Mode))

		inv := sess.Inventory()
		c.JSON(http.StatusOK, gin.H{
			"catalog": catalogState(sess.Catalog()),
			"search": gin.H{
				"query":     sess.Search,
				"mode":      q.Mode,
				"term":      q.Term,
				"locations": catalog.Search(inv, q),
			},
		})
	}
}

func AcknowledgeNotice() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		sess.AcknowledgeNotice()
		c.Status(http.StatusNoContent)
	}
}

func GetCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		items := sess.Catalog()
		if items == nil {
			items = []*types.CatalogItem{}
		}
		c.JSON(http.StatusOK, gin.H{"catalog": catalogState(items), "items": items})
	}
}

// GetImage serves an item image from dir, or a placeholder when the file
// is absent.
func GetImage(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := filepath.Base(filepath.Clean("/" + c.Param("filename")))
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			c.File(path)
			return
		}
		c.Data(http.StatusOK, "image/png", placeholderPNG())
	}
}

func addInventoryRoutes(router *gin.RouterGroup, cfg *config.Config) {
	router.GET("/inventory", GetInventory())
	router.GET("/inventory/search", SearchInventory())
	router.POST("/inventory/notice", AcknowledgeNotice())
	router.GET("/catalog", GetCatalog())
	router.GET("/images/:filename", GetImage(cfg.ImageDir))
}
