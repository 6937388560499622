package view

import (
	"bytes"
	"html"
	"strings"
	"testing"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/rank"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	return buf.String()
}

func desc(s string) *string { return &s }

func TestClassesEmptyState(t *testing.T) {
	admin := render(t, PartialClasses, ClassList{IsAdmin: true, Classes: []model.ClassSummary{}})
	for _, want := range []string{"Chưa có lớp học nào", "Bắt đầu bằng cách tạo lớp học đầu tiên của bạn", "Tạo lớp học đầu tiên"} {
		if !strings.Contains(admin, want) {
			t.Errorf("admin empty state missing %q", want)
		}
	}

	student := render(t, PartialClasses, ClassList{Classes: nil})
	if !strings.Contains(student, "Vui lòng liên hệ với quản trị viên để được thêm vào lớp học") {
		t.Error("student empty state missing contact message")
	}
	if strings.Contains(student, "Tạo lớp học đầu tiên") {
		t.Error("student sees admin call to action")
	}
}

func TestClassesGrid(t *testing.T) {
	out := render(t, PartialClasses, ClassList{Classes: []model.ClassSummary{
		{ID: "c1", Name: "Python cơ bản", Description: desc("Nhập môn"), Language: "python", StudentCount: 12},
		{ID: "c2", Name: "C++ nâng cao", Language: "cpp", StudentCount: 0},
	}})
	for _, want := range []string{"Python cơ bản", "Nhập môn", "12 học sinh", "Không có mô tả", "0 học sinh", "Xếp hạng", `data-state="list"`} {
		if !strings.Contains(out, want) {
			t.Errorf("grid missing %q", want)
		}
	}
}

func TestClassesErrorStateIsDistinct(t *testing.T) {
	out := render(t, PartialClasses, ClassList{IsAdmin: true, Failed: true})
	if !strings.Contains(out, `data-state="error"`) || !strings.Contains(out, "Thử lại") {
		t.Errorf("error state not rendered: %s", out)
	}
	if strings.Contains(out, "Chưa có lớp học nào") {
		t.Error("error state rendered as empty state")
	}
}

func TestIndexShell(t *testing.T) {
	out := render(t, PageIndex, Dashboard{
		Page:     Page{Title: "Trang chủ", Toasts: []flash.Toast{{Title: "Đăng nhập thành công", Description: "Chào mừng bạn đến với Codetrio!"}}},
		User:     model.User{ID: "u1", Email: "admin@codetrio.com"},
		Role:     model.RoleAdmin,
		IsAdmin:  true,
		Showcase: rank.Showcase(),
	})
	// html/template escapes "+" as "&#43;".
	out = html.UnescapeString(out)
	for _, want := range []string{
		"admin@codetrio.com", "Quản trị viên", "Quản lý", "Thêm lớp học", "Đăng xuất",
		"Danh sách lớp học", "Hệ thống xếp hạng Codetrio", "Đăng nhập thành công",
		"bg-rank-silver", "bg-rank-master", "(1650)", "1500+ điểm", `data-src="/partials/classes"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexHidesAdminControlsFromStudents(t *testing.T) {
	out := render(t, PageIndex, Dashboard{
		User:     model.User{Email: "hs@codetrio.com"},
		Role:     model.RoleStudent,
		Showcase: rank.Showcase(),
	})
	if !strings.Contains(out, "Học viên") {
		t.Error("missing student label")
	}
	for _, hidden := range []string{"Quản lý", "Thêm lớp học"} {
		if strings.Contains(out, hidden) {
			t.Errorf("student sees %q", hidden)
		}
	}
}

func TestAuthPage(t *testing.T) {
	out := render(t, PageAuth, AuthPage{
		Page:      Page{Toasts: []flash.Toast{{Title: "Lỗi", Description: "Vui lòng nhập đầy đủ email và mật khẩu", Variant: flash.VariantDestructive}}},
		Tab:       TabSignIn,
		Email:     "a@b.com",
		DemoEmail: "ntq.145@gmail.com",
		DemoPass:  "123456",
	})
	for _, want := range []string{`action="/auth/signin"`, `value="a@b.com"`, "toast-destructive", "Vui lòng nhập đầy đủ email và mật khẩu", "ntq.145@gmail.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("auth page missing %q", want)
		}
	}

	signup := render(t, PageAuth, AuthPage{Tab: TabSignUp})
	if !strings.Contains(signup, `action="/auth/signup"`) || !strings.Contains(signup, "Mật khẩu phải có ít nhất 6 ký tự") {
		t.Error("sign-up tab not rendered")
	}
}

func TestLoadingPageRefreshes(t *testing.T) {
	out := render(t, PageLoading, nil)
	if !strings.Contains(out, `http-equiv="refresh"`) || !strings.Contains(out, "spinner") {
		t.Errorf("loading page = %s", out)
	}
}

func TestFragmentLoaderRetriesWhileLoading(t *testing.T) {
	f, err := Static().Open("/app.js")
	if err != nil {
		t.Fatalf("open app.js: %v", err)
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		t.Fatal(err)
	}
	js := buf.String()
	for _, want := range []string{"res.status === 503", "Retry-After", "loadFragment(el)"} {
		if !strings.Contains(js, want) {
			t.Errorf("app.js missing %q", want)
		}
	}
}
