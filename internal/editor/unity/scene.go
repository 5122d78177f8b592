package unity

import (
	"encoding/binary"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/scenepatch/scenepatch/internal/editor"
	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/utils"
)

// Class IDs of the documents the scene writer touches
const (
	ClassGameObject    = 1
	ClassTransform     = 4
	ClassMonoBehaviour = 114
	ClassSceneRoots    = 1660057539
)

// scriptFileID is the local file identifier Unity gives the class of a
// MonoScript asset
const scriptFileID = 11500000

var documentHeader = regexp.MustCompile(`^--- !u!(\d+) &(-?\d+)`)

// Document is one serialized object of a scene file
type Document struct {
	ClassID int
	FileID  int64
	Header  string
	Body    []string
}

// Scene is a text-serialized Unity scene
type Scene struct {
	path      string
	name      string
	prelude   []string
	docs      []*Document
	newFileID func() int64
}

var _ editor.Scene = (*Scene)(nil)

// LoadScene reads the scene file at path
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ResolutionFailure, path, "scene file not found")
		}
		return nil, errors.Wrap(errors.IOFailure, path, err)
	}
	s, err := ParseScene(data)
	if err != nil {
		return nil, errors.Wrap(errors.ParseError, path, err)
	}
	s.path = path
	s.name = path
	return s, nil
}

// ParseScene splits a scene file into its documents
func ParseScene(data []byte) (*Scene, error) {
	text := strings.TrimSuffix(string(data), "\n")
	if !strings.HasPrefix(text, "%YAML") {
		return nil, fmt.Errorf("missing %%YAML directive")
	}

	s := &Scene{newFileID: RandomFileID}
	var cur *Document
	for n, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "---") {
			if cur == nil {
				s.prelude = append(s.prelude, line)
			} else {
				cur.Body = append(cur.Body, line)
			}
			continue
		}

		m := documentHeader.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: malformed document header %q", n+1, line)
		}
		classID, _ := strconv.Atoi(m[1])
		fileID, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad file id: %w", n+1, err)
		}
		cur = &Document{ClassID: classID, FileID: fileID, Header: line}
		s.docs = append(s.docs, cur)
	}
	return s, nil
}

// Path returns the scene path the scene was opened with
func (s *Scene) Path() string {
	return s.name
}

// Documents returns the scene's documents in file order
func (s *Scene) Documents() []*Document {
	return s.docs
}

// Bytes serializes the scene
func (s *Scene) Bytes() []byte {
	var b strings.Builder
	for _, line := range s.prelude {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, d := range s.docs {
		b.WriteString(d.Header)
		b.WriteByte('\n')
		for _, line := range d.Body {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// Save writes the scene back to the file it was loaded from
func (s *Scene) Save() error {
	if err := utils.WriteFileAtomic(s.path, s.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.IOFailure, s.path, err)
	}
	return nil
}

// AddObject appends a root-level GameObject named name with a Transform and
// a MonoBehaviour running the script t. When the scene lists its roots in a
// SceneRoots document the new transform is added there and the new
// documents are placed before it.
func (s *Scene) AddObject(name string, t editor.Type) error {
	if t.ID == "" {
		return errors.New(errors.ResolutionFailure, t.Name, "script type has no guid")
	}

	used := make(map[int64]bool, len(s.docs))
	for _, d := range s.docs {
		used[d.FileID] = true
	}
	next := func() int64 {
		for {
			id := s.newFileID()
			if id != 0 && !used[id] {
				used[id] = true
				return id
			}
		}
	}
	goID, trID, mbID := next(), next(), next()

	docs := []*Document{
		newDocument(ClassGameObject, goID,
			"GameObject:",
			"  m_ObjectHideFlags: 0",
			"  m_CorrespondingSourceObject: {fileID: 0}",
			"  m_PrefabInstance: {fileID: 0}",
			"  m_PrefabAsset: {fileID: 0}",
			"  serializedVersion: 6",
			"  m_Component:",
			fmt.Sprintf("  - component: {fileID: %d}", trID),
			fmt.Sprintf("  - component: {fileID: %d}", mbID),
			"  m_Layer: 0",
			"  m_Name: "+name,
			"  m_TagString: Untagged",
			"  m_Icon: {fileID: 0}",
			"  m_NavMeshLayer: 0",
			"  m_StaticEditorFlags: 0",
			"  m_IsActive: 1",
		),
		newDocument(ClassTransform, trID,
			"Transform:",
			"  m_ObjectHideFlags: 0",
			"  m_CorrespondingSourceObject: {fileID: 0}",
			"  m_PrefabInstance: {fileID: 0}",
			"  m_PrefabAsset: {fileID: 0}",
			fmt.Sprintf("  m_GameObject: {fileID: %d}", goID),
			"  serializedVersion: 2",
			"  m_LocalRotation: {x: 0, y: 0, z: 0, w: 1}",
			"  m_LocalPosition: {x: 0, y: 0, z: 0}",
			"  m_LocalScale: {x: 1, y: 1, z: 1}",
			"  m_ConstrainProportionsScale: 0",
			"  m_Children: []",
			"  m_Father: {fileID: 0}",
			"  m_LocalEulerAnglesHint: {x: 0, y: 0, z: 0}",
		),
		newDocument(ClassMonoBehaviour, mbID,
			"MonoBehaviour:",
			"  m_ObjectHideFlags: 0",
			"  m_CorrespondingSourceObject: {fileID: 0}",
			"  m_PrefabInstance: {fileID: 0}",
			"  m_PrefabAsset: {fileID: 0}",
			fmt.Sprintf("  m_GameObject: {fileID: %d}", goID),
			"  m_Enabled: 1",
			"  m_EditorHideFlags: 0",
			fmt.Sprintf("  m_Script: {fileID: %d, guid: %s, type: 3}", scriptFileID, t.ID),
			"  m_Name: ",
			"  m_EditorClassIdentifier: ",
		),
	}

	at := len(s.docs)
	for i, d := range s.docs {
		if d.ClassID == ClassSceneRoots {
			if err := d.addRoot(trID); err != nil {
				return errors.Wrap(errors.ParseError, s.path, err)
			}
			at = i
			break
		}
	}

	out := make([]*Document, 0, len(s.docs)+len(docs))
	out = append(out, s.docs[:at]...)
	out = append(out, docs...)
	out = append(out, s.docs[at:]...)
	s.docs = out
	return nil
}

func newDocument(classID int, fileID int64, body ...string) *Document {
	return &Document{
		ClassID: classID,
		FileID:  fileID,
		Header:  fmt.Sprintf("--- !u!%d &%d", classID, fileID),
		Body:    body,
	}
}

// addRoot appends a transform to the m_Roots list of a SceneRoots document
func (d *Document) addRoot(fileID int64) error {
	entry := fmt.Sprintf("  - {fileID: %d}", fileID)
	for i, line := range d.Body {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "m_Roots:") {
			continue
		}
		if strings.TrimSpace(strings.TrimPrefix(trimmed, "m_Roots:")) == "[]" {
			d.Body[i] = "  m_Roots:"
			d.insert(i+1, entry)
			return nil
		}
		end := i + 1
		for end < len(d.Body) && strings.HasPrefix(d.Body[end], "  - ") {
			end++
		}
		d.insert(end, entry)
		return nil
	}
	return fmt.Errorf("SceneRoots document %d has no m_Roots", d.FileID)
}

func (d *Document) insert(index int, line string) {
	d.Body = append(d.Body, "")
	copy(d.Body[index+1:], d.Body[index:])
	d.Body[index] = line
}

// RandomFileID returns a positive local file identifier drawn from a random
// UUID
func RandomFileID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) >> 1)
}
